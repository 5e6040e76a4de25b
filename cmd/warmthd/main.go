package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/everreach/warmthd/internal/alerts"
	"github.com/everreach/warmthd/internal/config"
	"github.com/everreach/warmthd/internal/contacts"
	"github.com/everreach/warmthd/internal/httpapi"
	"github.com/everreach/warmthd/internal/observability"
	"github.com/everreach/warmthd/internal/recompute"
	"github.com/everreach/warmthd/internal/warmth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, storeMode, err := contacts.NewStore(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("contact store init failed: %v", err)
	}
	defer store.Close()
	log.Printf("contact store: %s", storeMode)

	service := recompute.New(store, warmth.DefaultScoreConfig(), metrics)
	service.SetBulkLimit(cfg.BulkRecomputeLimit)

	checker := alerts.NewChecker(store, nil, metrics)

	api := httpapi.New(cfg, store, service, metrics, storeMode)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	service.StartSweeper(runCtx, cfg.SweepInterval, cfg.StaleAfter)
	checker.Start(runCtx, cfg.AlertCheckInterval)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
