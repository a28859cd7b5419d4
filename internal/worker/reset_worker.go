// Package worker runs the monthly budget reset on a cron schedule. The
// reset itself is idempotent, so firing daily is safe: it only applies once
// per month, within the first days.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Resetter is the tracker operation the worker drives.
type Resetter interface {
	RunMonthlyReset(ctx context.Context) (bool, error)
}

type ResetWorker struct {
	resetter Resetter
	schedule string
	cron     *cron.Cron
}

func NewResetWorker(resetter Resetter, schedule string) *ResetWorker {
	return &ResetWorker{
		resetter: resetter,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start runs one reset attempt immediately, then schedules the recurring
// check. The immediate run covers deployments that were down when the month
// turned.
func (w *ResetWorker) Start(ctx context.Context) error {
	w.runOnce(ctx)

	_, err := w.cron.AddFunc(w.schedule, func() {
		w.runOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule reset job: %w", err)
	}

	w.cron.Start()
	slog.InfoContext(ctx, "Reset worker started", "schedule", w.schedule)
	return nil
}

func (w *ResetWorker) runOnce(ctx context.Context) {
	applied, err := w.resetter.RunMonthlyReset(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Monthly reset failed", "error", err)
		return
	}
	if applied {
		slog.InfoContext(ctx, "Monthly reset applied by worker")
	}
}

// Stop halts the schedule and waits for a running job to finish.
func (w *ResetWorker) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	slog.Info("Reset worker stopped")
}
