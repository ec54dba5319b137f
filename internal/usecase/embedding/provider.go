// Package embedding implements the representation provider: a strategy
// ladder that prefers cheap local entity features for short texts, falls
// back to a remote vector embedding, and degrades to a keyword bag when
// the network provider is unavailable.
package embedding

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/metrics"
	"github.com/ghinote/ghinote/internal/nlp"
)

// Representation size caps.
const (
	featureKeywordCap = 20
	featureChunkCap   = 15
	keywordBagCap     = 30
)

// DefaultShortTextLimit is the character threshold below which the local
// extractor is preferred over the remote provider.
const DefaultShortTextLimit = 500

// DefaultRemoteTimeout bounds a single remote embedding call. The call is
// best-effort: no retry, failure falls through to the keyword bag.
const DefaultRemoteTimeout = 30 * time.Second

// Provider produces a Representation for arbitrary text. It never fails
// hard: any downstream failure degrades the outcome instead of surfacing
// an error.
type Provider struct {
	remote         domain.RemoteEmbedder
	extractor      *nlp.Extractor
	shortTextLimit int
	remoteTimeout  time.Duration
	logger         *zap.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithShortTextLimit overrides the short-text character threshold.
func WithShortTextLimit(limit int) Option {
	return func(p *Provider) {
		if limit > 0 {
			p.shortTextLimit = limit
		}
	}
}

// WithRemoteTimeout overrides the per-call remote embedding timeout.
func WithRemoteTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.remoteTimeout = d
		}
	}
}

// New creates a Provider. Both remote and extractor may be nil; the
// ladder skips the strategies it has no backend for.
func New(remote domain.RemoteEmbedder, extractor *nlp.Extractor, logger *zap.Logger, opts ...Option) *Provider {
	p := &Provider{
		remote:         remote,
		extractor:      extractor,
		shortTextLimit: DefaultShortTextLimit,
		remoteTimeout:  DefaultRemoteTimeout,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed produces a representation for the text, walking the ladder:
//
//  1. Short text with a usable extractor: entity-feature representation.
//     Falls through when extraction yields no keywords.
//  2. Remote vector embedding. Falls through on any provider failure.
//  3. Keyword bag, which always succeeds for non-blank text.
//
// Blank text yields SourceNone with a nil representation.
func (p *Provider) Embed(ctx context.Context, text string) domain.EmbedOutcome {
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.EmbeddingSourceTotal.WithLabelValues(string(domain.SourceNone)).Inc()
		return domain.EmbedOutcome{Source: domain.SourceNone}
	}

	if p.extractor != nil && len([]rune(text)) < p.shortTextLimit {
		if rep := p.entityFeatures(text); rep != nil {
			metrics.EmbeddingSourceTotal.WithLabelValues(string(domain.SourceEntityFeatures)).Inc()
			return domain.EmbedOutcome{Representation: rep, Source: domain.SourceEntityFeatures}
		}
		p.logger.Debug("feature extraction yielded no keywords, falling through",
			zap.Int("text_length", len(text)))
	}

	if p.remote != nil {
		if rep := p.remoteVector(ctx, text); rep != nil {
			metrics.EmbeddingSourceTotal.WithLabelValues(string(domain.SourceVector)).Inc()
			return domain.EmbedOutcome{Representation: rep, Source: domain.SourceVector}
		}
	}

	metrics.EmbeddingSourceTotal.WithLabelValues(string(domain.SourceKeywordBag)).Inc()
	return domain.EmbedOutcome{
		Representation: p.keywordBag(text),
		Source:         domain.SourceKeywordBag,
	}
}

// Similarity scores two representations; see domain.Similarity.
func (p *Provider) Similarity(a, b *domain.Representation) float64 {
	return domain.Similarity(a, b)
}

func (p *Provider) entityFeatures(text string) *domain.Representation {
	features := p.extractor.Extract(text)
	if features.Empty() {
		return nil
	}

	return &domain.Representation{
		Kind:       domain.KindEntityFeatures,
		Entities:   features.Entities,
		Keywords:   capList(features.Keywords, featureKeywordCap),
		Chunks:     capList(features.Chunks, featureChunkCap),
		TagCounts:  features.TagCounts,
		TextLength: len(text),
	}
}

func (p *Provider) remoteVector(ctx context.Context, text string) *domain.Representation {
	ctx, cancel := context.WithTimeout(ctx, p.remoteTimeout)
	defer cancel()

	vector, err := p.remote.Embed(ctx, text)
	if err != nil || len(vector) == 0 {
		p.logger.Warn("remote embedding failed, degrading to keyword bag", zap.Error(err))
		return nil
	}

	return &domain.Representation{
		Kind:       domain.KindVector,
		Vector:     vector,
		Dimensions: len(vector),
		TextLength: len(text),
	}
}

// fallbackStopwords backs the keyword bag when no extractor is configured.
var fallbackStopwords = nlp.NewExtractor(nil)

func (p *Provider) keywordBag(text string) *domain.Representation {
	words := strings.Fields(strings.ToLower(text))

	stopper := p.extractor
	if stopper == nil {
		stopper = fallbackStopwords
	}

	keywords := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) <= 2 {
			continue
		}
		if stopper.IsStopword(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
		if len(keywords) >= keywordBagCap {
			break
		}
	}

	return &domain.Representation{
		Kind:       domain.KindKeywordBag,
		Keywords:   keywords,
		WordCount:  len(words),
		TextLength: len(text),
	}
}

func capList(list []string, limit int) []string {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
