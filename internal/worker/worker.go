// Package worker runs background jobs on River: the periodic refresh of the
// disposable domain list and retries scheduled after a failed startup refresh.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"

	"mailguard/internal/config"
	"mailguard/internal/refresher"
	"mailguard/pkg/domain"
	"mailguard/pkg/logger"
)

// Options configure the River client started by Start.
type Options struct {
	// Interval between scheduled refreshes; zero disables scheduling.
	Interval time.Duration
	// Workers is the number of jobs processed concurrently.
	Workers int
	// JobTimeout bounds a single refresh job.
	JobTimeout time.Duration
}

// NewOptions constructs Options from the application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Interval:   cfg.Refresh.Interval,
		Workers:    cfg.Refresh.Workers,
		JobTimeout: cfg.Source.Timeout + time.Minute,
	}
}

// PeriodicJobs returns the scheduled refresh job, or nothing when interval is zero.
func PeriodicJobs(interval time.Duration) []*river.PeriodicJob {
	if interval <= 0 {
		return nil
	}

	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(interval),
			func() (river.JobArgs, *river.InsertOpts) {
				return RefreshJobArgs{Trigger: domain.RefreshTriggerScheduled}, nil
			},
			nil,
		),
	}
}

// Start creates and starts a River client processing refresh jobs.
func Start(ctx context.Context, dbPool *pgxpool.Pool, r refresher.Refresher, opts Options) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewRefreshWorker(r, opts.JobTimeout))

	maxWorkers := opts.Workers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers:      workers,
		PeriodicJobs: PeriodicJobs(opts.Interval),
		Logger:       slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
