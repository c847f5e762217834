package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
)

// SessionEvictor drops sessions idle since a cutoff
type SessionEvictor interface {
	EvictIdle(ctx context.Context, before time.Time) (int, error)
}

// SessionSweepWorker periodically evicts dashboard sessions idle longer
// than the TTL, so chart lists live no longer than their browser session.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type SessionSweepWorker struct {
	evictor  SessionEvictor
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionSweepWorker creates a new worker for evicting idle sessions
func NewSessionSweepWorker(evictor SessionEvictor, ttl, interval time.Duration) *SessionSweepWorker {
	return &SessionSweepWorker{
		evictor:  evictor,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop without blocking
func (w *SessionSweepWorker) Start(ctx context.Context) error {
	if w.ttl <= 0 || w.interval <= 0 {
		return goerr.New("session sweep requires positive ttl and interval",
			goerr.V("ttl", w.ttl),
			goerr.V("interval", w.interval))
	}

	logging.Default().Info("Session sweep worker starting",
		"ttl", w.ttl.String(),
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion. Calling it more
// than once is a no-op.
func (w *SessionSweepWorker) Stop() {
	w.stopOnce.Do(func() {
		logging.Default().Info("Session sweep worker stopping")
		close(w.stopCh)
		<-w.doneCh
		logging.Default().Info("Session sweep worker stopped")
	})
}

func (w *SessionSweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Sessions left over from a previous process are swept right away
	if err := w.sweep(ctx); err != nil {
		logging.Default().Error("Initial session sweep failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				logging.Default().Error("Session sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Session sweep worker context cancelled")
			return
		}
	}
}

func (w *SessionSweepWorker) sweep(ctx context.Context) error {
	startTime := w.now()
	cutoff := startTime.Add(-w.ttl)

	n, err := w.evictor.EvictIdle(ctx, cutoff)
	if err != nil {
		return goerr.Wrap(err, "failed to evict idle sessions", goerr.V("cutoff", cutoff))
	}

	if n > 0 {
		logging.Default().Info("Idle sessions evicted",
			"count", n,
			"cutoff", cutoff,
			"duration", time.Since(startTime).String())
	}
	return nil
}
