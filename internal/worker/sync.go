package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hyperengineering/lexicon/internal/engine"
	"github.com/hyperengineering/lexicon/internal/types"
)

// Syncer runs one sync.
type Syncer interface {
	Sync(ctx context.Context) (*types.SyncResult, error)
}

// SyncWorker runs syncs on a cron schedule.
type SyncWorker struct {
	syncer   Syncer
	schedule string
	location *time.Location
}

// NewSyncWorker creates a worker for a standard five-field cron expression
// or a descriptor such as "@hourly", evaluated in timezone.
func NewSyncWorker(syncer Syncer, schedule, timezone string) (*SyncWorker, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return &SyncWorker{
		syncer:   syncer,
		schedule: schedule,
		location: loc,
	}, nil
}

// Run schedules syncs until ctx is cancelled. A run still in progress when
// the next one is due is not overlapped.
func (w *SyncWorker) Run(ctx context.Context) {
	c := cron.New(
		cron.WithLocation(w.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(w.schedule, func() { w.runSync(ctx) }); err != nil {
		slog.Error("worker not started",
			"component", "worker",
			"worker", "scheduled-sync",
			"error", err,
		)
		return
	}

	slog.Info("worker started",
		"component", "worker",
		"worker", "scheduled-sync",
		"schedule", w.schedule,
		"timezone", w.location.String(),
	)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	slog.Info("worker stopped",
		"component", "worker",
		"worker", "scheduled-sync",
		"reason", "context_cancelled",
	)
}

// runSync runs a sync and logs the outcome.
func (w *SyncWorker) runSync(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	slog.Info("scheduled sync started",
		"component", "worker",
		"action", "sync_start",
	)

	result, err := w.syncer.Sync(ctx)
	if err != nil {
		// Check if it's a context cancellation (graceful shutdown)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("scheduled sync failed",
			"component", "worker",
			"action", "sync_failed",
			"notice", engine.Notice(err),
			"error", err,
		)
		return
	}

	slog.Info("scheduled sync complete",
		"component", "worker",
		"action", "sync_complete",
		"run_id", result.RunID,
		"summary", result.Summary(),
	)
}
