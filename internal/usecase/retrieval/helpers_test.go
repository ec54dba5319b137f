package retrieval

import (
	"context"
	"time"

	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/domain/rank"
)

type fakeCorpus struct {
	listFn   func(ctx context.Context, userID string) ([]*domain.Note, error)
	searchFn func(ctx context.Context, userID string, tokens []string, limit int) (rank.List, error)
}

func (f *fakeCorpus) ListCandidates(ctx context.Context, userID string) ([]*domain.Note, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, userID)
}

func (f *fakeCorpus) TextSearch(ctx context.Context, userID string, tokens []string, limit int) (rank.List, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(ctx, userID, tokens, limit)
}

type fakeEmbedder struct {
	embedFn func(ctx context.Context, text string) domain.EmbedOutcome
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) domain.EmbedOutcome {
	if f.embedFn == nil {
		return domain.EmbedOutcome{Source: domain.SourceNone}
	}
	return f.embedFn(ctx, text)
}

func (f *fakeEmbedder) Similarity(a, b *domain.Representation) float64 {
	return domain.Similarity(a, b)
}

func noteAt(id, title, body string, updated time.Time) *domain.Note {
	return &domain.Note{
		ID:        id,
		UserID:    "u1",
		Title:     title,
		Body:      body,
		UpdatedAt: updated,
	}
}

func keywordRep(words ...string) *domain.Representation {
	return &domain.Representation{
		Kind:      domain.KindKeywordBag,
		Keywords:  words,
		WordCount: len(words),
	}
}

func scoresAlmostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
