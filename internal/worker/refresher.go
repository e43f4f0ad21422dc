package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Syncer is the part of the engine the refresher drives.
type Syncer interface {
	Refresh(ctx context.Context) error
}

// Refresher periodically pulls the full collection from the service.
// A zero interval disables it.
type Refresher struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewRefresher constructs the periodic sync worker.
func NewRefresher(syncer Syncer, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval < 0 {
		interval = 0
	}
	return &Refresher{syncer: syncer, interval: interval, logger: logger}
}

// Enabled reports whether Start launches anything.
func (r *Refresher) Enabled() bool { return r.interval > 0 }

// Start launches the background loop. Calling Start twice is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	if !r.Enabled() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go r.loop(runCtx)
}

// Stop cancels the loop and waits for an in-flight refresh to return.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Refresher) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.syncer.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				r.logger.Warn("periodic refresh failed",
					slog.Int("consecutive_failures", failures),
					slog.Duration("interval", r.interval),
					slog.String("error", err.Error()))
				continue
			}
			if failures > 0 {
				r.logger.Info("periodic refresh recovered", slog.Int("after_failures", failures))
			}
			failures = 0
		}
	}
}
