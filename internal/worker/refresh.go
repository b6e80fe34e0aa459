package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"mailguard/internal/refresher"
	"mailguard/pkg/domain"
	"mailguard/pkg/logger"
)

// RefreshWorker is a River worker that refreshes the disposable domain list
// through a refresher.Refresher. A FAILED outcome fails the job so River
// retries it with its own backoff.
type RefreshWorker struct {
	river.WorkerDefaults[RefreshJobArgs]

	refresher refresher.Refresher
	timeout   time.Duration
}

// NewRefreshWorker constructs a RefreshWorker. A zero timeout keeps River's default.
func NewRefreshWorker(refresher refresher.Refresher, timeout time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		timeout:   timeout,
	}
}

// Timeout bounds a single refresh job.
func (r *RefreshWorker) Timeout(job *river.Job[RefreshJobArgs]) time.Duration {
	if r.timeout > 0 {
		return r.timeout
	}

	return r.WorkerDefaults.Timeout(job)
}

// Work runs one refresh.
func (r *RefreshWorker) Work(ctx context.Context, job *river.Job[RefreshJobArgs]) error {
	trigger := job.Args.Trigger
	if trigger == "" {
		trigger = domain.RefreshTriggerScheduled
	}
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.String("trigger", string(trigger)))

	outcome := r.refresher.Refresh(ctx, refresher.RefreshRequest{Trigger: trigger})
	if !outcome.Succeeded() {
		logger.Warn(ctx, "scheduled refresh failed", zap.String("error", outcome.Error))

		return fmt.Errorf("could not refresh domain list: %s", outcome.Error)
	}

	logger.Info(ctx, "scheduled refresh completed",
		zap.Uint64("version", outcome.Version),
		zap.Int("domains", outcome.DomainCount))

	return nil
}
