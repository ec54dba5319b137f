// Package db defines the storage facade the corpus and cache repositories
// are built on. Consumers depend on the narrow sub-interfaces, not Store.
package db

import (
	"context"
	"time"
)

// Store is the full database facade implemented by the redis driver.
type Store interface {
	Pinger
	JSONStore
	KVStore
	IndexManager
	TextSearcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations, used by the embedding cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// TextSearcher provides full-text operations over an FT index.
type TextSearcher interface {
	// SearchText runs a BM25-scored query.
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	// SearchList runs an unscored, paginated query.
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*SearchResult, error)
}
