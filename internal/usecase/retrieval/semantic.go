package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/domain/rank"
	"github.com/ghinote/ghinote/internal/metrics"
)

// Semantic ranks notes by representation similarity against the
// question. When the question cannot be embedded, or no candidate
// carries a stored representation, it degrades to a deterministic
// keyword-overlap scorer.
type Semantic struct {
	corpus   Corpus
	embedder Embedder
	logger   *zap.Logger
}

// NewSemantic creates the semantic strategy.
func NewSemantic(corpus Corpus, embedder Embedder, logger *zap.Logger) *Semantic {
	return &Semantic{corpus: corpus, embedder: embedder, logger: logger}
}

// Search scores every candidate note against the question.
func (s *Semantic) Search(ctx context.Context, question, userID string, limit int) rank.List {
	notes, err := s.corpus.ListCandidates(ctx, userID)
	if err != nil {
		s.logger.Warn("candidate listing failed", zap.Error(err))
		return nil
	}
	if len(notes) == 0 {
		return nil
	}

	outcome := s.embedder.Embed(ctx, question)
	if outcome.Representation == nil {
		return s.overlapFallback(question, notes, limit)
	}

	embedded := make([]*domain.Note, 0, len(notes))
	for _, note := range notes {
		if note.Embedding != nil {
			embedded = append(embedded, note)
		}
	}
	if len(embedded) == 0 {
		return s.overlapFallback(question, notes, limit)
	}

	var hits rank.List
	for _, note := range embedded {
		score := s.embedder.Similarity(outcome.Representation, note.Embedding)
		if score > 0 {
			hits = append(hits, rank.ScoredNote{Note: note, Score: score})
		}
	}
	hits.Sort()
	return hits.Truncate(limit)
}

// overlapFallback scores notes by the share of question tokens found in
// their searchable text, with a title bonus per matched token and a
// phrase-match multiplier. Pure function of its inputs.
func (s *Semantic) overlapFallback(question string, notes []*domain.Note, limit int) rank.List {
	metrics.RetrievalFallbackTotal.WithLabelValues("semantic").Inc()

	questionLower := strings.ToLower(question)
	tokens := meaningfulTokens(tokenize(question))
	if len(tokens) == 0 {
		return nil
	}

	var hits rank.List
	for _, note := range notes {
		haystack := strings.ToLower(note.SearchableText())
		titleLower := strings.ToLower(note.Title)

		matched := 0
		bonus := 0.0
		for _, tok := range tokens {
			if !strings.Contains(haystack, tok) {
				continue
			}
			matched++
			if note.Title != "" && strings.Contains(titleLower, tok) {
				bonus += 0.3
			} else {
				bonus += 0.2
			}
		}
		if matched == 0 {
			continue
		}

		score := (bonus + float64(matched)/float64(len(tokens))) / 2
		if strings.Contains(haystack, questionLower) {
			score *= 1.5
		}
		hits = append(hits, rank.ScoredNote{Note: note, Score: score})
	}
	hits.Sort()
	return hits.Truncate(limit)
}
