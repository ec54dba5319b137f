// Package corpus stores notes as RedisJSON documents under an FT index
// and serves the candidate listing and BM25 text search the retrieval
// strategies run on.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ghinote/ghinote/internal/db"
	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/domain/rank"
)

const (
	keyPrefix = "ghinote:note:"
	indexName = "ghinote-notes-idx"

	// listPageSize is the FT.SEARCH page size used when walking a
	// user's full candidate set.
	listPageSize = 200
)

// store is the consumer interface for notes (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo implements the retrieval engine's Corpus contract over redis.
type Repo struct {
	store store
}

// New creates a note repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the notes FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, indexDefinition()); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func indexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:        indexName,
		StorageType: db.StorageJSON,
		Prefixes:    []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: "$.title", Alias: "title", Type: db.IndexFieldText, TextWeight: 2},
			{Name: "$.body", Alias: "body", Type: db.IndexFieldText},
			{Name: "$.ocr_text", Alias: "ocr_text", Type: db.IndexFieldText},
			{Name: "$.user_id", Alias: "user_id", Type: db.IndexFieldTag},
			{Name: "$.archived", Alias: "archived", Type: db.IndexFieldTag},
		},
	}
}

// Put creates or replaces a note.
func (r *Repo) Put(ctx context.Context, note *domain.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal note: %w", err)
	}
	if err := r.store.JSONSet(ctx, noteKey(note.ID), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", noteKey(note.ID), err)
	}
	return nil
}

// Get returns a note by ID, scoped to the owning user.
func (r *Repo) Get(ctx context.Context, userID, id string) (*domain.Note, error) {
	raw, err := r.store.JSONGet(ctx, noteKey(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("json.get %s: %w", noteKey(id), err)
	}
	note, err := parseNote(string(raw))
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, domain.ErrNoteNotFound
	}
	return note, nil
}

// Delete removes a note. Deleting a missing note is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, noteKey(id)); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("del %s: %w", noteKey(id), err)
	}
	return nil
}

// ListCandidates returns every non-archived note owned by userID,
// paging through the FT index.
func (r *Repo) ListCandidates(ctx context.Context, userID string) ([]*domain.Note, error) {
	query := fmt.Sprintf("@user_id:{%s} @archived:{false}", db.EscapeToken(userID))

	var notes []*domain.Note
	offset := 0
	for {
		result, err := r.store.SearchList(ctx, indexName, query, offset, listPageSize, []string{"$"})
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		if result == nil || len(result.Entries) == 0 {
			break
		}
		for _, entry := range result.Entries {
			note, err := parseNote(entry.Fields["$"])
			if err != nil {
				continue
			}
			if note.Archived {
				continue
			}
			notes = append(notes, note)
		}
		offset += len(result.Entries)
		if offset >= result.Total || len(result.Entries) < listPageSize {
			break
		}
	}
	return notes, nil
}

// TextSearch runs a BM25-scored disjunctive token query over the user's
// non-archived notes and returns the hits with their engine scores.
func (r *Repo) TextSearch(ctx context.Context, userID string, tokens []string, limit int) (rank.List, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	escaped := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		escaped = append(escaped, db.EscapeToken(tok))
	}
	if len(escaped) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("@user_id:{%s} @archived:{false} (%s)",
		db.EscapeToken(userID), strings.Join(escaped, "|"))

	result, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    indexName,
		Query:        query,
		TopK:         limit,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	scored := make(rank.List, 0, len(result.Entries))
	for _, entry := range result.Entries {
		note, err := parseNote(entry.Fields["$"])
		if err != nil {
			continue
		}
		scored = append(scored, rank.ScoredNote{Note: note, Score: entry.Score})
	}
	return scored, nil
}

func noteKey(id string) string {
	return keyPrefix + id
}

func parseNote(raw string) (*domain.Note, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty note document")
	}
	// JSON.GET with a $ path wraps the document in an array.
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var arr []domain.Note
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return nil, fmt.Errorf("unmarshal note: %w", err)
		}
		if len(arr) == 0 {
			return nil, fmt.Errorf("empty note document")
		}
		return &arr[0], nil
	}
	var note domain.Note
	if err := json.Unmarshal([]byte(trimmed), &note); err != nil {
		return nil, fmt.Errorf("unmarshal note: %w", err)
	}
	return &note, nil
}
