package retrieval

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain/rank"
	"github.com/ghinote/ghinote/internal/metrics"
)

// Lexical ranks notes by full-text relevance, with a substring fallback
// when the index returns nothing. Best-effort: storage errors yield an
// empty list, never propagate.
type Lexical struct {
	corpus Corpus
	logger *zap.Logger
}

// NewLexical creates the lexical strategy.
func NewLexical(corpus Corpus, logger *zap.Logger) *Lexical {
	return &Lexical{corpus: corpus, logger: logger}
}

// Search runs the disjunctive full-text query and falls back to a
// case-insensitive substring match on the longest token.
func (l *Lexical) Search(ctx context.Context, question, userID string, limit int) rank.List {
	tokens := meaningfulTokens(tokenize(question))
	if len(tokens) == 0 {
		return nil
	}

	hits, err := l.corpus.TextSearch(ctx, userID, tokens, limit)
	if err != nil {
		l.logger.Warn("full-text search failed", zap.Error(err))
		hits = nil
	}
	if len(hits) > 0 {
		hits.Sort()
		return hits.Truncate(limit)
	}

	return l.substringFallback(ctx, tokens, userID, limit)
}

// substringFallback scans the candidate set for the longest token and
// scores every hit uniformly at 0.5, newest first.
func (l *Lexical) substringFallback(ctx context.Context, tokens []string, userID string, limit int) rank.List {
	metrics.RetrievalFallbackTotal.WithLabelValues("lexical").Inc()

	needle := longestToken(tokens)
	if needle == "" {
		return nil
	}

	notes, err := l.corpus.ListCandidates(ctx, userID)
	if err != nil {
		l.logger.Warn("candidate listing failed", zap.Error(err))
		return nil
	}

	var hits rank.List
	for _, note := range notes {
		if strings.Contains(strings.ToLower(note.SearchableText()), needle) {
			hits = append(hits, rank.ScoredNote{Note: note, Score: 0.5})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Note.UpdatedAt.After(hits[j].Note.UpdatedAt)
	})
	return hits.Truncate(limit)
}
