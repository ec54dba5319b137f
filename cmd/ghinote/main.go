package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/config"
	dbRedis "github.com/ghinote/ghinote/internal/db/redis"
	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/domain/query"
	logpkg "github.com/ghinote/ghinote/internal/logger"
	"github.com/ghinote/ghinote/internal/metrics"
	"github.com/ghinote/ghinote/internal/nlp"
	"github.com/ghinote/ghinote/internal/repository/corpus"
	"github.com/ghinote/ghinote/internal/repository/embcache"
	chiTransport "github.com/ghinote/ghinote/internal/transport/chi"
	openaiEmb "github.com/ghinote/ghinote/internal/transport/openai"
	embeddinguc "github.com/ghinote/ghinote/internal/usecase/embedding"
	healthuc "github.com/ghinote/ghinote/internal/usecase/health"
	"github.com/ghinote/ghinote/internal/usecase/retrieval"
	"github.com/ghinote/ghinote/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ghinote retrieval service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	corpusRepo := corpus.New(store)
	if err := corpusRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure notes index", zap.Error(err))
	}

	// Remote embedder chain: OpenAI-compatible transport wrapped in
	// the store-backed cache. Optional: without a provider the engine
	// runs on local extraction and keyword bags.
	var remote domain.RemoteEmbedder
	var embChecker healthuc.EmbeddingChecker
	if cfg.Embedding.Provider != "" {
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		remote = embcache.New(base, store,
			time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour, logger)
		embChecker = base
		logger.Info("Remote embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Info("No remote embedder configured, running on local fallbacks")
	}

	extractor := nlp.NewExtractor(cfg.Retrieval.Stopwords)
	provider := embeddinguc.New(remote, extractor, logger,
		embeddinguc.WithShortTextLimit(cfg.Retrieval.ShortTextLimit),
		embeddinguc.WithRemoteTimeout(time.Duration(cfg.Retrieval.EmbedTimeoutSec)*time.Second),
	)

	classifier := query.NewClassifier(query.Markers{
		Structured:      cfg.Retrieval.StructuredMarkers,
		ActionVerbs:     cfg.Retrieval.ActionVerbs,
		AbstractPhrases: cfg.Retrieval.AbstractPhrases,
	})

	engine := retrieval.NewEngine(
		classifier,
		retrieval.NewLexical(corpusRepo, logger),
		retrieval.NewSemantic(corpusRepo, provider, logger),
		retrieval.NewEntity(corpusRepo, logger),
		logger,
		retrieval.WithQueryTimeout(time.Duration(cfg.Retrieval.QueryTimeoutSec)*time.Second),
	)

	healthSvc := healthuc.New(store, embChecker)

	server := chiTransport.NewServer(engine, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
