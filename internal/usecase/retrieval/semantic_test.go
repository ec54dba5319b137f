package retrieval

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain"
)

func TestSemantic_SimilarityPath(t *testing.T) {
	now := time.Now()
	near := noteAt("near", "", "", now)
	near.Embedding = keywordRep("họp", "dự", "án")
	far := noteAt("far", "", "", now)
	far.Embedding = keywordRep("mua", "sữa")
	bare := noteAt("bare", "", "", now)

	corpus := &fakeCorpus{
		listFn: func(_ context.Context, _ string) ([]*domain.Note, error) {
			return []*domain.Note{far, near, bare}, nil
		},
	}
	embedder := &fakeEmbedder{
		embedFn: func(_ context.Context, _ string) domain.EmbedOutcome {
			return domain.EmbedOutcome{
				Representation: keywordRep("họp", "dự", "án"),
				Source:         domain.SourceKeywordBag,
			}
		},
	}

	hits := NewSemantic(corpus, embedder, zap.NewNop()).Search(context.Background(), "họp dự án", "u1", 10)
	if len(hits) != 1 {
		t.Fatalf("expected 1 positive-similarity hit, got %d", len(hits))
	}
	if hits[0].Note.ID != "near" {
		t.Errorf("expected the matching note first, got %s", hits[0].Note.ID)
	}
	if !scoresAlmostEqual(hits[0].Score, 1.0) {
		t.Errorf("identical keyword bags must score 1.0, got %v", hits[0].Score)
	}
}

func TestSemantic_FallbackWhenNoNoteHasEmbedding(t *testing.T) {
	now := time.Now()
	corpus := &fakeCorpus{
		listFn: func(_ context.Context, _ string) ([]*domain.Note, error) {
			return []*domain.Note{
				noteAt("titled", "Họp về dự án", "chi tiết", now),
				noteAt("body", "", "họp tuần này", now),
			}, nil
		},
	}
	embedder := &fakeEmbedder{
		embedFn: func(_ context.Context, text string) domain.EmbedOutcome {
			return domain.EmbedOutcome{
				Representation: keywordRep("họp"),
				Source:         domain.SourceKeywordBag,
			}
		},
	}

	hits := NewSemantic(corpus, embedder, zap.NewNop()).Search(context.Background(), "họp dự án", "u1", 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 overlap hits, got %d", len(hits))
	}
	// Title matches earn the larger per-token bonus.
	if hits[0].Note.ID != "titled" {
		t.Errorf("expected the title match first, got %s", hits[0].Note.ID)
	}
	// tokens: họp, dự, án; all three hit the title note: bonus 0.9,
	// base 1.0, score 0.95.
	if !scoresAlmostEqual(hits[0].Score, 0.95) {
		t.Errorf("expected 0.95, got %v", hits[0].Score)
	}
	// one of three tokens hits the body note: bonus 0.2, base 1/3.
	if !scoresAlmostEqual(hits[1].Score, (0.2+1.0/3.0)/2) {
		t.Errorf("unexpected body-note score %v", hits[1].Score)
	}
}

func TestSemantic_FallbackPhraseMultiplier(t *testing.T) {
	now := time.Now()
	corpus := &fakeCorpus{
		listFn: func(_ context.Context, _ string) ([]*domain.Note, error) {
			return []*domain.Note{noteAt("n1", "", "nhớ họp nhóm sáng mai", now)}, nil
		},
	}
	embedder := &fakeEmbedder{}

	hits := NewSemantic(corpus, embedder, zap.NewNop()).Search(context.Background(), "họp nhóm", "u1", 10)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	// Both tokens match the body (bonus 0.4, base 1.0) and the whole
	// question is a literal substring, so the 1.5 multiplier applies.
	if !scoresAlmostEqual(hits[0].Score, 0.7*1.5) {
		t.Errorf("expected phrase-boosted 1.05, got %v", hits[0].Score)
	}
}

func TestSemantic_FallbackIsDeterministic(t *testing.T) {
	now := time.Now()
	notes := []*domain.Note{
		noteAt("a", "Họp dự án", "", now),
		noteAt("b", "", "họp dự án tuần tới", now),
		noteAt("c", "Dự án X", "họp", now),
	}
	corpus := &fakeCorpus{
		listFn: func(_ context.Context, _ string) ([]*domain.Note, error) { return notes, nil },
	}
	sem := NewSemantic(corpus, &fakeEmbedder{}, zap.NewNop())

	first := sem.Search(context.Background(), "họp dự án", "u1", 10)
	second := sem.Search(context.Background(), "họp dự án", "u1", 10)
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Note.ID != second[i].Note.ID || first[i].Score != second[i].Score {
			t.Errorf("run %d differs: %s/%v vs %s/%v",
				i, first[i].Note.ID, first[i].Score, second[i].Note.ID, second[i].Score)
		}
	}
}

func TestSemantic_NoCandidates(t *testing.T) {
	corpus := &fakeCorpus{}
	hits := NewSemantic(corpus, &fakeEmbedder{}, zap.NewNop()).Search(context.Background(), "họp", "u1", 10)
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}
