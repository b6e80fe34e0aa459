// Package refresher orchestrates replacing the disposable domain list: it
// fetches from the configured source, swaps the cache atomically and keeps an
// audit trail of every attempt.
package refresher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mailguard/internal/config"
	"mailguard/internal/disposable"
	"mailguard/pkg/domain"
	"mailguard/pkg/domainsource"
	"mailguard/pkg/logger"
	"mailguard/pkg/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	instrumentationName = "mailguard/internal/refresher"
)

// Options configure an Orchestrator.
type Options struct {
	// FetchTimeout bounds a single upstream fetch. Zero means the caller's
	// context is the only bound.
	FetchTimeout time.Duration
	// MeterProvider provides the refresh counters. Defaults to the global provider.
	MeterProvider metric.MeterProvider
	// TracerProvider provides refresh spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// NewOptions constructs Options from the application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		FetchTimeout: cfg.Source.Timeout,
	}
}

// Orchestrator implements Refresher. Concurrent refreshes are coalesced so
// that callers overlapping an in-flight refresh share its outcome.
type Orchestrator struct {
	cache   *disposable.Cache
	source  domainsource.Source
	storage storage.Storage // nil when persistence is disabled
	options Options

	mu       sync.Mutex
	current  *flight
	tracer   trace.Tracer
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

var _ Refresher = (*Orchestrator)(nil)

// New creates an Orchestrator. strg may be nil, in which case nothing is persisted.
func New(cache *disposable.Cache, source domainsource.Source, strg storage.Storage, options Options) (*Orchestrator, error) {
	if options.MeterProvider == nil {
		options.MeterProvider = otel.GetMeterProvider()
	}
	if options.TracerProvider == nil {
		options.TracerProvider = otel.GetTracerProvider()
	}

	meter := options.MeterProvider.Meter(instrumentationName)
	total, err := meter.Int64Counter("mailguard.refresh.total",
		metric.WithDescription("Number of disposable domain list refresh attempts by status."))
	if err != nil {
		return nil, fmt.Errorf("could not create refresh counter: %w", err)
	}
	duration, err := meter.Float64Histogram("mailguard.refresh.duration",
		metric.WithDescription("Duration of disposable domain list refreshes."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("could not create refresh histogram: %w", err)
	}

	return &Orchestrator{
		cache:    cache,
		source:   source,
		storage:  strg,
		options:  options,
		tracer:   options.TracerProvider.Tracer(instrumentationName),
		total:    total,
		duration: duration,
	}, nil
}

// flight is one running refresh shared by every caller that arrives while it
// runs. Its context is detached from the callers and cancelled once the last
// waiting caller has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	req     RefreshRequest
	waiters int
	done    chan struct{}
	outcome domain.RefreshOutcome
}

// Refresh implements Refresher. Callers that arrive while a refresh is in
// flight wait for it and receive its outcome instead of starting another one.
// A caller whose context ends stops waiting and gets a FAILED outcome; the
// fetch itself is only cancelled when no caller is left waiting for it.
func (o *Orchestrator) Refresh(ctx context.Context, req RefreshRequest) domain.RefreshOutcome {
	f, leader := o.join(ctx, req)
	if leader {
		go o.run(f)
	}

	select {
	case <-f.done:
		if ctx.Err() != nil {
			break
		}
		if !leader {
			logger.Debug(ctx, "refresh outcome shared with concurrent callers", zap.String("trigger", string(req.Trigger)))
			if req != f.req {
				o.persist(context.WithoutCancel(ctx), req, f.outcome, nil)
			}
		}

		return f.outcome
	case <-ctx.Done():
	}

	o.leave(f)
	logger.Warn(ctx, "stopped waiting for refresh",
		zap.String("trigger", string(req.Trigger)),
		zap.Error(ctx.Err()))

	return domain.RefreshOutcome{Status: domain.RefreshStatusFailed, Error: ctx.Err().Error()}
}

// join registers the caller on the running flight, starting a new one when
// none is running. leader is true for the caller that started it.
func (o *Orchestrator) join(ctx context.Context, req RefreshRequest) (f *flight, leader bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil || o.current.ctx.Err() != nil {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		o.current = &flight{ctx: fctx, cancel: cancel, req: req, done: make(chan struct{})}
		leader = true
	}
	o.current.waiters++

	return o.current, leader
}

// leave unregisters a caller that stopped waiting. The last caller to leave
// cancels the fetch.
func (o *Orchestrator) leave(f *flight) {
	o.mu.Lock()
	defer o.mu.Unlock()

	f.waiters--
	if f.waiters == 0 {
		f.cancel()
	}
}

func (o *Orchestrator) run(f *flight) {
	defer f.cancel()

	f.outcome = o.refresh(f.ctx, f.req)

	o.mu.Lock()
	if o.current == f {
		o.current = nil
	}
	o.mu.Unlock()
	close(f.done)
}

func (o *Orchestrator) refresh(ctx context.Context, req RefreshRequest) domain.RefreshOutcome {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "refresher.Refresh", trace.WithAttributes(
		attribute.String("refresh.trigger", string(req.Trigger)),
	))
	defer span.End()

	fetchCtx := ctx
	if o.options.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, o.options.FetchTimeout)
		defer cancel()
	}

	set, err := o.source.Fetch(fetchCtx)
	if err == nil && fetchCtx.Err() != nil {
		err = fetchCtx.Err()
	}
	if err == nil && set.Len() == 0 {
		err = domainsource.ErrEmptyList
	}

	var outcome domain.RefreshOutcome
	if err != nil {
		outcome = domain.RefreshOutcome{Status: domain.RefreshStatusFailed, Error: err.Error()}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		logger.Error(ctx, "could not refresh disposable domains",
			zap.String("trigger", string(req.Trigger)),
			zap.Error(err))
	} else {
		prev := o.cache.Replace(set)
		outcome = domain.RefreshOutcome{
			Status:      domain.RefreshStatusSucceeded,
			Version:     prev + 1,
			DomainCount: set.Len(),
		}
		logger.Info(ctx, "disposable domains refreshed",
			zap.String("trigger", string(req.Trigger)),
			zap.Uint64("version", outcome.Version),
			zap.Int("domains", outcome.DomainCount))
	}
	span.SetAttributes(attribute.String("refresh.status", string(outcome.Status)))

	o.persist(context.WithoutCancel(ctx), req, outcome, set)

	attrs := metric.WithAttributes(attribute.String("status", string(outcome.Status)))
	o.total.Add(ctx, 1, attrs)
	o.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	return outcome
}

// persist stores the snapshot and the event of a refresh in one transaction.
// A nil set records only the event. Storage failures are logged and never
// change the outcome.
func (o *Orchestrator) persist(ctx context.Context, req RefreshRequest, outcome domain.RefreshOutcome, set *domain.DomainSet) {
	if o.storage == nil {
		return
	}

	event := domain.RefreshEvent{
		Trigger:     req.Trigger,
		ClientID:    req.ClientID,
		Status:      outcome.Status,
		Version:     outcome.Version,
		DomainCount: outcome.DomainCount,
		Error:       outcome.Error,
	}
	if err := o.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if outcome.Succeeded() && set != nil {
			if _, err := tx.StoreSnapshot(ctx, domain.Snapshot{
				Domains: set.Domains(),
				Version: outcome.Version,
			}); err != nil {
				return fmt.Errorf("could not store snapshot: %w", err)
			}
		}
		if _, err := tx.StoreRefreshEvents(ctx, event); err != nil {
			return fmt.Errorf("could not store refresh event: %w", err)
		}

		return nil
	}); err != nil {
		logger.Error(ctx, "could not persist refresh", zap.Error(err))
	}
}

// RecordDenied implements Refresher.
func (o *Orchestrator) RecordDenied(ctx context.Context, clientID string, reason domain.DenyReason) {
	o.total.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(domain.RefreshStatusDenied))))
	if o.storage == nil {
		return
	}

	if _, err := o.storage.StoreRefreshEvents(context.WithoutCancel(ctx), domain.RefreshEvent{
		Trigger:    domain.RefreshTriggerManual,
		ClientID:   clientID,
		Status:     domain.RefreshStatusDenied,
		DenyReason: reason,
	}); err != nil {
		logger.Error(ctx, "could not store denied refresh", zap.Error(err))
	}
}

// RecentEvents implements Refresher.
func (o *Orchestrator) RecentEvents(ctx context.Context, limit uint) ([]domain.RefreshEvent, error) {
	if o.storage == nil {
		return nil, nil
	}

	events, err := o.storage.RecentRefreshEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not get recent refresh events: %w", err)
	}

	return events, nil
}

// Bootstrap populates the cache while the service starts. When the upstream
// fetch fails and a persisted snapshot exists, the snapshot is installed
// instead and restored is true.
func (o *Orchestrator) Bootstrap(ctx context.Context) (outcome domain.RefreshOutcome, restored bool) {
	outcome = o.Refresh(ctx, RefreshRequest{Trigger: domain.RefreshTriggerStartup})
	if outcome.Succeeded() || o.storage == nil {
		return outcome, false
	}

	snapshot, err := o.storage.LatestSnapshot(ctx)
	if err != nil {
		logger.Error(ctx, "could not load domain snapshot", zap.Error(err))

		return outcome, false
	}
	if snapshot == nil || len(snapshot.Domains) == 0 {
		return outcome, false
	}

	set := snapshot.Set()
	prev := o.cache.Replace(set)
	logger.Warn(ctx, "serving persisted domain snapshot after failed startup refresh",
		zap.Uint64("snapshotVersion", snapshot.Version),
		zap.Time("snapshotCreatedAt", snapshot.CreatedAt),
		zap.Int("domains", set.Len()))

	return domain.RefreshOutcome{
		Status:      domain.RefreshStatusSucceeded,
		Version:     prev + 1,
		DomainCount: set.Len(),
	}, true
}
