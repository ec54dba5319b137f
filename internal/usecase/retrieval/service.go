package retrieval

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain/ask"
	"github.com/ghinote/ghinote/internal/domain/query"
	"github.com/ghinote/ghinote/internal/domain/rank"
	"github.com/ghinote/ghinote/internal/metrics"
)

// DefaultQueryTimeout bounds total retrieval latency per question.
const DefaultQueryTimeout = 45 * time.Second

// Strategy is one retrieval method. Implementations fail soft: an
// empty list on any internal error, never a propagated failure.
type Strategy interface {
	Search(ctx context.Context, question, userID string, limit int) rank.List
}

// Response is the engine's answer to one question: the fused ranking
// plus the classified query type for diagnostics.
type Response struct {
	QueryType query.Type
	Results   rank.List
}

// Engine classifies the question, fans the three strategies out
// concurrently, waits for all of them, and fuses their scores. It holds
// no cross-request state.
type Engine struct {
	classifier *query.Classifier
	lexical    Strategy
	semantic   Strategy
	entity     Strategy

	queryTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithQueryTimeout bounds the per-question retrieval fan-out.
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.queryTimeout = d
		}
	}
}

// WithClock injects the reranker's notion of "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine wires the classifier and the three strategies together.
func NewEngine(classifier *query.Classifier, lexical, semantic, entity Strategy, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		classifier:   classifier,
		lexical:      lexical,
		semantic:     semantic,
		entity:       entity,
		queryTimeout: DefaultQueryTimeout,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask answers one question against the user's notes. The only error is
// request validation; dependency failures degrade individual strategies
// and an all-miss question returns an empty ranking.
func (e *Engine) Ask(ctx context.Context, question, userID string, limit int) (*Response, error) {
	req, err := ask.New(question, userID, limit)
	if err != nil {
		return nil, err
	}

	queryType := e.classifier.Classify(req.Question())
	metrics.QueriesTotal.WithLabelValues(string(queryType)).Inc()

	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	var (
		wg                            sync.WaitGroup
		lexHits, semHits, entityHits rank.List
	)
	run := func(name string, s Strategy, out *rank.List) {
		defer wg.Done()
		start := time.Now()
		*out = s.Search(ctx, req.Question(), req.UserID(), req.Limit())
		metrics.RetrievalStrategyDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	wg.Add(3)
	go run("lexical", e.lexical, &lexHits)
	go run("semantic", e.semantic, &semHits)
	go run("entity", e.entity, &entityHits)
	wg.Wait()

	results := fuse(lexHits, semHits, entityHits,
		rank.ProfileFor(queryType), req.Question(), req.Limit(), e.now())

	e.logger.Debug("question answered",
		zap.String("query_type", string(queryType)),
		zap.Int("lexical_hits", len(lexHits)),
		zap.Int("semantic_hits", len(semHits)),
		zap.Int("entity_hits", len(entityHits)),
		zap.Int("results", len(results)))

	return &Response{QueryType: queryType, Results: results}, nil
}
