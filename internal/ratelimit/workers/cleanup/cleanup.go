// Package cleanup sweeps the in-memory lockout store so entries for addresses
// that stopped failing do not accumulate. Redis-backed deployments rely on
// key expiry instead and do not run the worker.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"jamsession/internal/ratelimit/config"
	"jamsession/internal/ratelimit/metrics"
)

// Result is the outcome of one sweep.
type Result struct {
	EntriesPurged int
	LockedEntries int
	Duration      time.Duration
}

// Sweeper is implemented by the in-memory lockout store.
type Sweeper interface {
	PurgeStale(ctx context.Context, now, idleCutoff time.Time) (purged, locked int, err error)
}

type Worker struct {
	store    Sweeper
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithClock sets the clock used for the staleness cutoff.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

func New(store Sweeper, opts ...Option) *Worker {
	w := &Worker{
		store:    store,
		logger:   slog.Default(),
		interval: config.DefaultConfig().CleanupInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start sweeps on every tick until ctx is done. A failed sweep is logged and
// retried on the next tick.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "lockout cleanup worker started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "lockout cleanup worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			res, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.ErrorContext(ctx, "lockout cleanup failed", "error", err)
				continue
			}
			if res.EntriesPurged > 0 {
				w.logger.InfoContext(ctx, "lockout cleanup completed",
					"entries_purged", res.EntriesPurged,
					"locked_entries", res.LockedEntries,
					"duration_ms", res.Duration.Milliseconds(),
				)
			}
		}
	}
}

// RunOnce executes a single sweep and records its metrics. An unlocked entry
// is stale once its last failure is older than the lockout window.
func (w *Worker) RunOnce(ctx context.Context) (*Result, error) {
	started := time.Now()
	now := w.now()
	purged, locked, err := w.store.PurgeStale(ctx, now, now.Add(-config.LockoutDuration))
	elapsed := time.Since(started)
	if err != nil {
		w.metrics.ObserveCleanup("error", 0, elapsed)
		return nil, err
	}

	w.metrics.ObserveCleanup("success", purged, elapsed)
	w.metrics.SetLockedIdentifiers(locked)
	return &Result{EntriesPurged: purged, LockedEntries: locked, Duration: elapsed}, nil
}
