package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lexicon/internal/api"
	"github.com/hyperengineering/lexicon/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled sync",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Configuration and engine
	a, err := newApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := a.cfg.ValidateServe(); err != nil {
		return err
	}
	slog.Info("vault opened", "root", a.vault.Root())

	// 3. HTTP router
	handler := api.NewHandler(a.runner, a.uploader, a.cfg.Auth.APIKey, Version)
	router := api.NewRouter(handler)

	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout),
	}

	// 4. Workers
	var wg sync.WaitGroup
	if a.cfg.Sync.Schedule != "" {
		syncWorker, err := worker.NewSyncWorker(a.runner, a.cfg.Sync.Schedule, a.cfg.Sync.Timezone)
		if err != nil {
			return fmt.Errorf("sync schedule: %w", err)
		}
		startWorker(ctx, &wg, "sync", syncWorker.Run)
	}

	// 5. Serve until signalled
	go func() {
		slog.Info("server starting", "address", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 6. Graceful shutdown: drain requests, then wait for workers
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(a.cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	wg.Wait()

	slog.Info("shutdown complete")
	return nil
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
