// cmd/copy-server/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"betfunnels-copy/internal/api"
	"betfunnels-copy/internal/common/auth"
	"betfunnels-copy/internal/common/camunda"
	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/database"
	"betfunnels-copy/internal/common/logger"
	"betfunnels-copy/internal/common/observability"
	"betfunnels-copy/internal/copywriter/briefing"
	"betfunnels-copy/internal/copywriter/generation"
	"betfunnels-copy/internal/copywriter/reference"
	"betfunnels-copy/internal/copywriter/templatestore"
	generatecopy "betfunnels-copy/internal/workers/copywriting/generate-copy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type connection interface {
	Ping(ctx context.Context) error
	Close() error
}

// pingOrClose closes c when it cannot reach its server, so a retry never
// leaves the previous pool open.
func pingOrClose(ctx context.Context, c connection) error {
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return err
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": cfg.App.Name})

	log.Info("starting copy server", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"mode":        cfg.Generation.Mode,
		"dayCount":    cfg.Generation.DayCount,
	})

	ctx := context.Background()

	obs, err := observability.New(ctx, cfg.App, cfg.Telemetry, log)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pingOrClose(ctx, pg)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	log.Info("PostgreSQL connected successfully", nil)

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return pingOrClose(ctx, rdb)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("Redis connected successfully", nil)

	// --- Generation pipeline ---
	var model generation.Model
	gemini, err := generation.NewGeminiModel(ctx, cfg.GenAI)
	if err != nil {
		log.Warn("model client unavailable, generation requests will fail", map[string]interface{}{"error": err.Error()})
		model = generation.Unavailable(err)
	} else {
		model = gemini
	}

	store := templatestore.NewStore(pg, cfg.Reference.Keys, log)
	orchestrator := generation.New(
		generation.ConfigFrom(cfg),
		store,
		reference.NewResolver(cfg.Reference),
		briefing.NewBuilder(cfg.Generation.DayCount, cfg.Generation.CarryForwardDays),
		model,
		obs,
		log,
	)

	gate := auth.NewPasswordGate(cfg.Auth.AppPassword)
	if !gate.Configured() {
		log.Warn("app password not set, every request will be refused", nil)
	}

	readiness := map[string]api.Pinger{
		"postgres": pg,
		"redis":    rdb,
	}

	// --- Optional Zeebe worker ---
	var zeebe *camunda.Client
	var jobWorker *camunda.Worker
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, cfg.Camunda)
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}

		handler, err := generatecopy.NewHandler(generatecopy.HandlerOptions{
			AppConfig: cfg,
			Generator: orchestrator,
			Logger:    log,
		})
		if err != nil {
			zapLog.Fatal("failed to create generate-copy handler", zap.Error(err))
		}
		jobWorker = camunda.NewWorker(zeebe.GetClient(), camunda.Options{
			TaskType:       generatecopy.TaskType,
			MaxJobsActive:  handler.Config().MaxJobsActive,
			Timeout:        handler.Config().Timeout,
			RequestTimeout: config.GetDuration(cfg.Camunda.RequestTimeout),
		}, handler, log)
		readiness["zeebe"] = zeebe
	}

	// --- HTTP API ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		Config:    cfg,
		Generator: orchestrator,
		Casinos:   store,
		Gate:      gate,
		Limiter:   auth.NewAttemptLimiter(rdb.Client, cfg.Auth.MaxAttempts, config.GetDuration(cfg.Auth.AttemptWindow)),
		Readiness: readiness,
		Logger:    log,
	})
	srv := api.NewServer(cfg.Server, router)

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, draining requests...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("observability shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("copy server stopped gracefully", nil)
}
