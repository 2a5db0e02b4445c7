package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arung-agamani/waveradio/config"
	"github.com/arung-agamani/waveradio/internal/boundary"
	"github.com/arung-agamani/waveradio/internal/ingest"
	"github.com/arung-agamani/waveradio/internal/scheduler"
	"github.com/arung-agamani/waveradio/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("starting waveradio",
		"port", cfg.Port,
		"db_path", cfg.DBPath,
		"station_name", cfg.StationName,
	)

	db, err := store.Open(cfg.DBPath, store.DefaultConfig())
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		slog.Error("failed to migrate store", "error", err)
		os.Exit(1)
	}

	sch := scheduler.New(st)
	worker := ingest.NewWorker(st, cfg)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: boundary.NewServer(cfg, st, sch)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutdown signal received")
		cancel()
	}()

	// The worker gets its own context so the shutdown signal does not abort
	// an in-flight job; it is stopped below through Stop.
	go worker.Run(context.Background())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.WorkerShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	worker.Stop()
	select {
	case <-worker.Done():
		slog.Info("worker stopped cleanly")
	case <-time.After(cfg.WorkerShutdownTimeout):
		slog.Warn("worker did not stop within the shutdown timeout, exiting with its in-flight job unfinished")
	}

	slog.Info("waveradio stopped")
}
