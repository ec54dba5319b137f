// Package retrieval implements the question-answering core: three
// independent search strategies over a user's notes, a classifier-driven
// weight profile, and score fusion with secondary reranking.
package retrieval

import (
	"context"

	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/domain/rank"
)

// Corpus is the read-only note access the strategies run on. Both
// operations are scoped to one user and must exclude archived notes.
type Corpus interface {
	// ListCandidates returns every candidate note owned by userID.
	ListCandidates(ctx context.Context, userID string) ([]*domain.Note, error)
	// TextSearch runs a disjunctive full-text query and returns hits
	// with the engine's native relevance score, best first.
	TextSearch(ctx context.Context, userID string, tokens []string, limit int) (rank.List, error)
}

// Embedder turns text into a comparable representation and scores
// representation pairs. Embed fails soft: a degraded or nil
// representation, never an error.
type Embedder interface {
	Embed(ctx context.Context, text string) domain.EmbedOutcome
	Similarity(a, b *domain.Representation) float64
}
