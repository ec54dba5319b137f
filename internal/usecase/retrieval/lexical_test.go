package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/domain/rank"
)

func TestLexical_FullTextHitsRankedAndTruncated(t *testing.T) {
	now := time.Now()
	corpus := &fakeCorpus{
		searchFn: func(_ context.Context, userID string, tokens []string, _ int) (rank.List, error) {
			if userID != "u1" {
				t.Errorf("unexpected user: %s", userID)
			}
			for _, tok := range tokens {
				if _, stop := retrievalStopwords[tok]; stop {
					t.Errorf("stopword %q must not reach the index", tok)
				}
			}
			return rank.List{
				{Note: noteAt("low", "", "", now), Score: 0.2},
				{Note: noteAt("high", "", "", now), Score: 1.8},
				{Note: noteAt("mid", "", "", now), Score: 0.9},
			}, nil
		},
	}

	hits := NewLexical(corpus, zap.NewNop()).Search(context.Background(), "họp của dự án", "u1", 2)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Note.ID != "high" || hits[1].Note.ID != "mid" {
		t.Errorf("unexpected order: %s, %s", hits[0].Note.ID, hits[1].Note.ID)
	}
}

func TestLexical_SubstringFallbackOnEmptyIndex(t *testing.T) {
	older := time.Now().Add(-48 * time.Hour)
	newer := time.Now().Add(-1 * time.Hour)
	corpus := &fakeCorpus{
		searchFn: func(_ context.Context, _ string, _ []string, _ int) (rank.List, error) {
			return nil, nil
		},
		listFn: func(_ context.Context, _ string) ([]*domain.Note, error) {
			return []*domain.Note{
				noteAt("old", "Deadline dự án", "nộp báo cáo", older),
				noteAt("new", "", "deadline thứ sáu", newer),
				noteAt("misses", "Mua sữa", "", newer),
			}, nil
		},
	}

	hits := NewLexical(corpus, zap.NewNop()).Search(context.Background(), "deadline về x", "u1", 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 fallback hits, got %d", len(hits))
	}
	// Uniform score, newest first.
	if hits[0].Note.ID != "new" || hits[1].Note.ID != "old" {
		t.Errorf("expected recency order, got %s, %s", hits[0].Note.ID, hits[1].Note.ID)
	}
	for _, h := range hits {
		if h.Score != 0.5 {
			t.Errorf("fallback score must be 0.5, got %v", h.Score)
		}
	}
}

func TestLexical_StorageErrorsYieldEmptyList(t *testing.T) {
	corpus := &fakeCorpus{
		searchFn: func(_ context.Context, _ string, _ []string, _ int) (rank.List, error) {
			return nil, errors.New("index offline")
		},
		listFn: func(_ context.Context, _ string) ([]*domain.Note, error) {
			return nil, errors.New("store offline")
		},
	}

	hits := NewLexical(corpus, zap.NewNop()).Search(context.Background(), "họp dự án", "u1", 5)
	if len(hits) != 0 {
		t.Fatalf("expected empty list, got %d hits", len(hits))
	}
}

func TestLexical_StopwordOnlyQuestionUsesRawTokens(t *testing.T) {
	var gotTokens []string
	corpus := &fakeCorpus{
		searchFn: func(_ context.Context, _ string, tokens []string, _ int) (rank.List, error) {
			gotTokens = tokens
			return rank.List{{Note: noteAt("n1", "", "", time.Now()), Score: 1}}, nil
		},
	}

	NewLexical(corpus, zap.NewNop()).Search(context.Background(), "của và", "u1", 5)
	if len(gotTokens) != 2 {
		t.Fatalf("expected unfiltered tokens, got %v", gotTokens)
	}
}
