// Package ghinote is the embedded client: it wires the note store, the
// embedding provider, and the retrieval engine in-process, without the
// HTTP surface.
package ghinote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/db"
	dbRedis "github.com/ghinote/ghinote/internal/db/redis"
	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/domain/query"
	"github.com/ghinote/ghinote/internal/nlp"
	"github.com/ghinote/ghinote/internal/repository/corpus"
	"github.com/ghinote/ghinote/internal/repository/embcache"
	embeddinguc "github.com/ghinote/ghinote/internal/usecase/embedding"
	healthuc "github.com/ghinote/ghinote/internal/usecase/health"
	notesuc "github.com/ghinote/ghinote/internal/usecase/notes"
	"github.com/ghinote/ghinote/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

type clientConfig struct {
	addrs    []string
	password string

	remote         domain.RemoteEmbedder
	cacheTTL       time.Duration
	markers        query.Markers
	stopwords      []string
	shortTextLimit int
	embedTimeout   time.Duration
	queryTimeout   time.Duration

	logger *zap.Logger
}

// Option configures the client.
type Option func(*clientConfig)

// WithRedis sets the note store address.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	}
}

// WithRemoteEmbedder plugs in a vector embedding provider. Without one
// the engine runs on local extraction and keyword bags only.
func WithRemoteEmbedder(e domain.RemoteEmbedder) Option {
	return func(c *clientConfig) { c.remote = e }
}

// WithEmbeddingCacheTTL bounds cached embedding lifetime. Zero caches
// forever.
func WithEmbeddingCacheTTL(ttl time.Duration) Option {
	return func(c *clientConfig) { c.cacheTTL = ttl }
}

// WithMarkers overrides the classifier marker lists.
func WithMarkers(m query.Markers) Option {
	return func(c *clientConfig) { c.markers = m }
}

// WithStopwords overrides the extractor stopword list.
func WithStopwords(words []string) Option {
	return func(c *clientConfig) { c.stopwords = words }
}

// WithShortTextLimit overrides the local-extraction length threshold.
func WithShortTextLimit(limit int) Option {
	return func(c *clientConfig) { c.shortTextLimit = limit }
}

// WithEmbedTimeout bounds a single remote embedding call.
func WithEmbedTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.embedTimeout = d }
}

// WithQueryTimeout bounds one question's retrieval fan-out.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.queryTimeout = d }
}

// WithLogger sets the client logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// Client is the ghinote embedded entry point.
type Client struct {
	store  db.Store
	engine *retrieval.Engine
	notes  *notesuc.Service
	health *healthuc.Service
}

// Open creates a Client, connects to the store, and ensures the notes
// index exists.
func Open(opts ...Option) (*Client, error) {
	cfg := &clientConfig{logger: zap.NewNop()}
	for _, o := range opts {
		o(cfg)
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("ghinote: store address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("ghinote: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("ghinote: store not ready: %w", err)
	}

	repo := corpus.New(store)
	if err := repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ghinote: ensure index: %w", err)
	}

	return wireClient(store, repo, cfg), nil
}

func wireClient(store db.Store, repo *corpus.Repo, cfg *clientConfig) *Client {
	logger := cfg.logger

	remote := cfg.remote
	if remote != nil {
		remote = embcache.New(remote, store, cfg.cacheTTL, logger)
	}

	extractor := nlp.NewExtractor(cfg.stopwords)
	var provOpts []embeddinguc.Option
	if cfg.shortTextLimit > 0 {
		provOpts = append(provOpts, embeddinguc.WithShortTextLimit(cfg.shortTextLimit))
	}
	if cfg.embedTimeout > 0 {
		provOpts = append(provOpts, embeddinguc.WithRemoteTimeout(cfg.embedTimeout))
	}
	provider := embeddinguc.New(remote, extractor, logger, provOpts...)

	var engineOpts []retrieval.Option
	if cfg.queryTimeout > 0 {
		engineOpts = append(engineOpts, retrieval.WithQueryTimeout(cfg.queryTimeout))
	}
	engine := retrieval.NewEngine(
		query.NewClassifier(cfg.markers),
		retrieval.NewLexical(repo, logger),
		retrieval.NewSemantic(repo, provider, logger),
		retrieval.NewEntity(repo, logger),
		logger,
		engineOpts...,
	)

	var embChecker healthuc.EmbeddingChecker
	if hc, ok := cfg.remote.(domain.HealthChecker); ok {
		embChecker = hc
	}

	return &Client{
		store:  store,
		engine: engine,
		notes:  notesuc.New(repo, provider, logger),
		health: healthuc.New(store, embChecker),
	}
}

// Ask answers a question against the user's notes.
func (c *Client) Ask(ctx context.Context, question, userID string, limit int) (*retrieval.Response, error) {
	return c.engine.Ask(ctx, question, userID, limit)
}

// SaveNote embeds and stores a note.
func (c *Client) SaveNote(ctx context.Context, note *domain.Note) error {
	return c.notes.Save(ctx, note)
}

// GetNote returns one of the user's notes.
func (c *Client) GetNote(ctx context.Context, userID, id string) (*domain.Note, error) {
	return c.notes.Get(ctx, userID, id)
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.notes.Delete(ctx, id)
}

// Health reports component availability.
func (c *Client) Health(ctx context.Context) healthuc.Report {
	return c.health.Check(ctx)
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}
