package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/coaching"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/config"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/db"
	httpapi "github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/http"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/ingest"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/unify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "coach-backend").Logger()

	loader := &ingest.Loader{
		Dir:        cfg.DataDir,
		OrdersFile: cfg.OrdersFile,
		RosterFile: cfg.RosterFile,
		Logger:     logger,
	}
	unifier := unify.New(loader, cfg.CacheTTL, cfg.SyntheticDemoData, logger)
	engine := coaching.NewEngine(unifier, logger)

	var store *db.Store
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		store, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate db")
		}
	} else {
		logger.Info().Msg("no database configured, status persistence disabled")
	}

	var scheduler *cron.Cron
	if cfg.CacheRefreshCron != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.CacheRefreshCron, unifier.Refresh); err != nil {
			logger.Fatal().Err(err).Str("spec", cfg.CacheRefreshCron).Msg("invalid cache refresh schedule")
		}
		scheduler.Start()
		logger.Info().Str("spec", cfg.CacheRefreshCron).Msg("cache refresh scheduled")
	}

	router := httpapi.Router(cfg, unifier, engine, store, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if scheduler != nil {
		scheduler.Stop()
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
