package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ghinote/ghinote/internal/db"
	"github.com/ghinote/ghinote/internal/domain"
)

type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn         func(ctx context.Context, key string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchTextFn  func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchListFn  func(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	return m.jsonSetFn(ctx, key, path, data)
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	return m.jsonGetFn(ctx, key, paths...)
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	return m.delFn(ctx, key)
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	return m.createIndexFn(ctx, def)
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	return m.indexExistsFn(ctx, name)
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	return m.searchTextFn(ctx, q)
}

func (m *mockStore) SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error) {
	return m.searchListFn(ctx, index, query, offset, limit, fields)
}

func newTestRepo() (*Repo, *mockStore) {
	ms := &mockStore{}
	return New(ms), ms
}

func testNote(id, userID string) *domain.Note {
	return &domain.Note{
		ID:        id,
		UserID:    userID,
		Title:     "Họp dự án X",
		Body:      "Thứ hai 9h sáng",
		UpdatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func noteJSON(t *testing.T, note *domain.Note) string {
	t.Helper()
	data, err := json.Marshal(note)
	if err != nil {
		t.Fatalf("marshal note: %v", err)
	}
	return string(data)
}

// --- Put / Get / Delete ---

func TestPut(t *testing.T) {
	repo, ms := newTestRepo()

	var gotKey, gotPath string
	var gotData []byte
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		gotKey, gotPath, gotData = key, path, data
		return nil
	}

	note := testNote("n1", "u1")
	if err := repo.Put(context.Background(), note); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "ghinote:note:n1" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if gotPath != "$" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	var stored domain.Note
	if err := json.Unmarshal(gotData, &stored); err != nil {
		t.Fatalf("stored data is not valid JSON: %v", err)
	}
	if stored.ID != "n1" || stored.UserID != "u1" {
		t.Errorf("stored note mismatch: %+v", stored)
	}
}

func TestPut_InvalidNote(t *testing.T) {
	repo, _ := newTestRepo()

	err := repo.Put(context.Background(), &domain.Note{ID: "n1"})
	if !errors.Is(err, domain.ErrInvalidNote) {
		t.Fatalf("expected ErrInvalidNote, got %v", err)
	}
}

func TestGet(t *testing.T) {
	repo, ms := newTestRepo()
	note := testNote("n1", "u1")

	ms.jsonGetFn = func(_ context.Context, key string, _ ...string) ([]byte, error) {
		if key != "ghinote:note:n1" {
			t.Errorf("unexpected key: %s", key)
		}
		return []byte("[" + noteJSON(t, note) + "]"), nil
	}

	got, err := repo.Get(context.Background(), "u1", "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "n1" || got.Title != note.Title {
		t.Errorf("unexpected note: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo()

	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	_, err := repo.Get(context.Background(), "u1", "missing")
	if !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestGet_WrongUser(t *testing.T) {
	repo, ms := newTestRepo()
	note := testNote("n1", "u1")

	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte("[" + noteJSON(t, note) + "]"), nil
	}

	_, err := repo.Get(context.Background(), "u2", "n1")
	if !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound for foreign note, got %v", err)
	}
}

func TestDelete_MissingKeyIsNotAnError(t *testing.T) {
	repo, ms := newTestRepo()

	ms.delFn = func(_ context.Context, _ string) error { return db.ErrKeyNotFound }

	if err := repo.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- EnsureIndex ---

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	repo, ms := newTestRepo()

	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		if name != "ghinote-notes-idx" {
			t.Errorf("unexpected index name: %s", name)
		}
		return false, nil
	}
	var def *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, d *db.IndexDefinition) error {
		def = d
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def == nil {
		t.Fatal("expected CreateIndex call")
	}
	if def.StorageType != db.StorageJSON {
		t.Errorf("expected JSON storage, got %s", def.StorageType)
	}
	if len(def.Fields) != 5 {
		t.Fatalf("expected 5 schema fields, got %d", len(def.Fields))
	}
	if def.Fields[0].Alias != "title" || def.Fields[0].TextWeight != 2 {
		t.Errorf("title field must be TEXT with weight 2: %+v", def.Fields[0])
	}
}

func TestEnsureIndex_SkipsWhenPresent(t *testing.T) {
	repo, ms := newTestRepo()

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Fatal("CreateIndex must not be called")
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_RaceOnCreateIsBenign(t *testing.T) {
	repo, ms := newTestRepo()

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- ListCandidates ---

func TestListCandidates_FiltersByUserAndArchived(t *testing.T) {
	repo, ms := newTestRepo()
	n1 := testNote("n1", "u1")
	n2 := testNote("n2", "u1")

	ms.searchListFn = func(_ context.Context, index, query string, offset, _ int, _ []string) (*db.SearchResult, error) {
		if index != "ghinote-notes-idx" {
			t.Errorf("unexpected index: %s", index)
		}
		if !strings.Contains(query, "@user_id:{u1}") || !strings.Contains(query, "@archived:{false}") {
			t.Errorf("unexpected query: %s", query)
		}
		if offset > 0 {
			return &db.SearchResult{Total: 2}, nil
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Key: "ghinote:note:n1", Fields: map[string]string{"$": noteJSON(t, n1)}},
				{Key: "ghinote:note:n2", Fields: map[string]string{"$": noteJSON(t, n2)}},
			},
		}, nil
	}

	notes, err := repo.ListCandidates(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID != "n1" || notes[1].ID != "n2" {
		t.Errorf("unexpected notes: %s, %s", notes[0].ID, notes[1].ID)
	}
}

func TestListCandidates_Paginates(t *testing.T) {
	repo, ms := newTestRepo()

	pages := 0
	ms.searchListFn = func(_ context.Context, _, _ string, offset, limit int, _ []string) (*db.SearchResult, error) {
		pages++
		total := listPageSize + 1
		if offset == 0 {
			entries := make([]db.SearchEntry, limit)
			for i := range entries {
				n := testNote("n"+string(rune('a'+i%26)), "u1")
				entries[i] = db.SearchEntry{Fields: map[string]string{"$": noteJSON(t, n)}}
			}
			return &db.SearchResult{Total: total, Entries: entries}, nil
		}
		n := testNote("last", "u1")
		return &db.SearchResult{
			Total:   total,
			Entries: []db.SearchEntry{{Fields: map[string]string{"$": noteJSON(t, n)}}},
		}, nil
	}

	notes, err := repo.ListCandidates(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pages != 2 {
		t.Errorf("expected 2 pages, got %d", pages)
	}
	if len(notes) != listPageSize+1 {
		t.Errorf("expected %d notes, got %d", listPageSize+1, len(notes))
	}
}

func TestListCandidates_SkipsMalformedDocuments(t *testing.T) {
	repo, ms := newTestRepo()
	good := testNote("ok", "u1")

	ms.searchListFn = func(_ context.Context, _, _ string, _, _ int, _ []string) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Fields: map[string]string{"$": "{not json"}},
				{Fields: map[string]string{"$": noteJSON(t, good)}},
			},
		}, nil
	}

	notes, err := repo.ListCandidates(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != "ok" {
		t.Fatalf("expected only the parseable note, got %d", len(notes))
	}
}

// --- TextSearch ---

func TestTextSearch_BuildsDisjunctiveQuery(t *testing.T) {
	repo, ms := newTestRepo()
	note := testNote("n1", "u1")

	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		want := "@user_id:{u1} @archived:{false} (họp|dự\\-án)"
		if q.Query != want {
			t.Errorf("query mismatch:\n got %s\nwant %s", q.Query, want)
		}
		if q.TopK != 10 {
			t.Errorf("expected TopK 10, got %d", q.TopK)
		}
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{Key: "ghinote:note:n1", Score: 1.5, Fields: map[string]string{"$": noteJSON(t, note)}},
			},
		}, nil
	}

	scored, err := repo.TextSearch(context.Background(), "u1", []string{"họp", "dự-án"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(scored))
	}
	if scored[0].Note.ID != "n1" || scored[0].Score != 1.5 {
		t.Errorf("unexpected hit: %+v", scored[0])
	}
}

func TestTextSearch_NoTokens(t *testing.T) {
	repo, ms := newTestRepo()

	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		t.Fatal("SearchText must not be called without tokens")
		return nil, nil
	}

	scored, err := repo.TextSearch(context.Background(), "u1", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored != nil {
		t.Fatalf("expected nil result, got %v", scored)
	}
}
