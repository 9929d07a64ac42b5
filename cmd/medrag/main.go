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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/config"
	dbRedis "github.com/shaiyon/AI-Engineer-Take-Home/internal/db/redis"
	logpkg "github.com/shaiyon/AI-Engineer-Take-Home/internal/logger"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/metrics"
	documentrepo "github.com/shaiyon/AI-Engineer-Take-Home/internal/repository/document"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/repository/notecache"
	vectorrepo "github.com/shaiyon/AI-Engineer-Take-Home/internal/repository/vector"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/retry"
	chiTransport "github.com/shaiyon/AI-Engineer-Take-Home/internal/transport/chi"
	openaiProvider "github.com/shaiyon/AI-Engineer-Take-Home/internal/transport/openai"
	answeruc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/answer"
	documentuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/document"
	healthuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/health"
	noteuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/note"
	seeduc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/seed"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/version"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting medrag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
		zap.String("sql_path", cfg.SQL.Path),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Connected to redis")

	docRepo, err := documentrepo.Open(cfg.SQL.Path)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer func() { _ = docRepo.Close() }()

	if err := docRepo.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate document store", zap.Error(err))
	}

	vecRepo := vectorrepo.New(store, cfg.Storage.KeyPrefix, cfg.OpenAI.Embedding.Dimensions)
	if err := vecRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}

	metrics.RegisterLLMMetrics()

	// Provider clients are constructed once here and shared across requests.
	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
	}
	embedder := openaiProvider.NewEmbedder(&openaiProvider.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.Embedding.Model,
		Dimensions: cfg.OpenAI.Embedding.Dimensions,
		Retry:      policy,
		Logger:     logger,
	})
	extractor := openaiProvider.NewExtractor(&openaiProvider.ExtractorConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Extraction.Model,
		Temperature: cfg.OpenAI.Extraction.Temperature,
		Retry:       policy,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.OpenAI.Embedding.Model),
		zap.Int("dimensions", cfg.OpenAI.Embedding.Dimensions),
		zap.String("extraction_model", cfg.OpenAI.Extraction.Model),
	)

	summaryCache := notecache.New(store, cfg.Storage.KeyPrefix, logger)

	answerSvc := answeruc.New(embedder, vecRepo, extractor)
	noteSvc := noteuc.New(extractor, summaryCache)
	docSvc := documentuc.New(docRepo, vecRepo, embedder)
	seedSvc := seeduc.New(docSvc, cfg.Seed.NotesDir, logger)
	healthSvc := healthuc.New(store, docRepo)

	server := chiTransport.NewServer(answerSvc, noteSvc, docSvc, seedSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

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
						"detail": "internal error",
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

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
