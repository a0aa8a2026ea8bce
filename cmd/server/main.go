package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/ai"
	"github.com/david/voluntrack/internal/api"
	"github.com/david/voluntrack/internal/auth"
	"github.com/david/voluntrack/internal/config"
	"github.com/david/voluntrack/internal/db"
	"github.com/david/voluntrack/internal/hours"
	"github.com/david/voluntrack/internal/ingest"
	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := db.OpenKV(ctx, cfg.Storage, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("storage", cfg.Storage), zap.Error(err))
	}
	defer closeKV()

	data, err := seed.Load("internal/seed/data/seed.yaml")
	if err != nil {
		logger.Fatal("failed to load bundled data", zap.Error(err))
	}

	gen := ai.NewGuarded(ai.NewOllamaClient(cfg.AI.OllamaHost, cfg.AI.OllamaModel), ai.GuardConfig{
		Name:             "ollama",
		RatePerSecond:    cfg.AI.RateLimitRPS,
		FailureThreshold: uint32(cfg.AI.BreakerFailures),
		Cooldown:         cfg.AI.BreakerCooldown,
	}, logger)

	orch := ingest.NewOrchestrator(gen, ingest.Fallback{
		Organizations: data.Organizations,
		Opportunities: data.Opportunities,
	}, ingest.Options{
		Enabled: cfg.AI.Enabled,
		Timeout: cfg.AI.Timeout,
	}, logger)

	authService := auth.NewService(kv, logger)
	if err := authService.Seed(ctx, data.Users); err != nil {
		logger.Fatal("failed to seed users", zap.Error(err))
	}
	hoursService := hours.NewService(kv, orch, authService, gen, logger)
	if err := hoursService.Seed(ctx, data.LoggedHours, data.ImpactStories); err != nil {
		logger.Fatal("failed to seed logged hours", zap.Error(err))
	}

	// The first batch loads in the background; lookups report loading until it lands.
	orch.Request(ctx, models.Query{})

	srv := api.NewServer(orch, authService, hoursService, api.Options{
		PageSize:          cfg.PageSize,
		CommunityHourGoal: cfg.CommunityHourGoal,
		CORSOrigins:       cfg.CORSOrigins,
		AISearchEnabled:   cfg.AI.Enabled,
	}, logger)

	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port), zap.Bool("ai_search", cfg.AI.Enabled))
		if err := srv.Echo.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	orch.Wait()
}
