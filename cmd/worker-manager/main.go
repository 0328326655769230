// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"listing-unitmix/internal/common/camunda"
	"listing-unitmix/internal/common/config"
	"listing-unitmix/internal/common/database"
	"listing-unitmix/internal/common/genai"
	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/common/observability"
	"listing-unitmix/internal/unitmix/extractor"
	"listing-unitmix/internal/unitmix/llmfallback"
	eum "listing-unitmix/internal/workers/extraction/extract-unit-mix"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("starting worker manager", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	obs := observability.New("worker-manager", log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFromApp(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer func() {
		if err := zeebe.Close(); err != nil {
			log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}()
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	// --- Redis extraction cache (optional) ---
	var cache eum.Cache
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Enabled() {
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err == nil {
			err = redisClient.Ping(ctx)
		}
		if err != nil {
			log.Warn("redis unavailable, extraction cache disabled", map[string]interface{}{"error": err.Error()})
			_ = redisClient.Close()
			redisClient = nil
		} else {
			cache = redisClient
			defer func() { _ = redisClient.Close() }()
			log.Info("redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
		}
	}

	// --- Pipeline ---
	workerCfg := eum.NewConfig(cfg)
	pipeline := extractor.New(workerCfg.Extraction, newLLMClient(cfg, log), log)

	handler, err := eum.NewHandler(eum.HandlerOptions{
		Config:        workerCfg,
		Extractor:     pipeline,
		Cache:         cache,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("failed to create extract-unit-mix handler", zap.Error(err))
	}

	jobWorker := camunda.StartWorker(zeebe.GetClient(), eum.TaskType, handler.Handle, config.GetWorkerConfig(cfg, eum.TaskType), log)

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newMux(zeebe, redisClient),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if jobWorker != nil {
		closeWorker(shutdownCtx, jobWorker)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("health/metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped gracefully", nil)
}

// newLLMClient returns nil unless Pass C is enabled; an untyped nil keeps
// the fallback pass disabled.
func newLLMClient(cfg *config.Config, log logger.Logger) llmfallback.Client {
	if !cfg.Extraction.LLMFallbackEnabled {
		return nil
	}
	g := cfg.APIs.GenAI
	client := genai.NewClient(&genai.Config{
		BaseURL:     g.BaseURL,
		APIKey:      g.APIKey,
		Model:       g.Model,
		Timeout:     config.GetDuration(g.Timeout),
		Temperature: g.Temperature,
		MaxTokens:   g.MaxTokens,
	}, log)
	log.Info("llm fallback enabled", map[string]interface{}{"model": g.Model})
	return llmfallback.NewGenAIClient(client)
}

// closeWorker waits for in-flight jobs to finish or the context to expire.
func closeWorker(ctx context.Context, w worker.JobWorker) {
	done := make(chan struct{})
	go func() {
		w.Close()
		w.AwaitClose()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func newMux(zeebe *camunda.Client, redisClient *database.RedisClient) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"zeebe": "ok"}
		status := http.StatusOK
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(r.Context()); err != nil {
				// the cache is optional; report but stay ready
				checks["redis"] = err.Error()
			}
		}
		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		writeStatus(w, status, state, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}
