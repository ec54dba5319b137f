package domain

import "context"

// RemoteEmbedder is the network vectorization contract. Implementations are
// selected by configuration at startup; call sites never inspect providers
// by name.
type RemoteEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HealthChecker verifies remote provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Source identifies which strategy produced a representation, so callers
// and tests can distinguish a real embedding from a degraded fallback.
type Source string

// Embedding sources, from richest to none.
const (
	SourceEntityFeatures Source = "entity_features"
	SourceVector         Source = "vector"
	SourceKeywordBag     Source = "keyword_bag"
	SourceNone           Source = "none"
)

// EmbedOutcome carries a representation together with its provenance.
type EmbedOutcome struct {
	Representation *Representation
	Source         Source
}

// Degraded reports whether the outcome fell through to the keyword bag
// or produced nothing at all.
func (o EmbedOutcome) Degraded() bool {
	return o.Source == SourceKeywordBag || o.Source == SourceNone
}
