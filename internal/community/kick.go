// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package community

import (
	"context"
	"log/slog"
	"time"
)

// # Kick Reconciliation

// Reconciler periodically removes expired kick entries across all communities.
//
// # Why a sweep instead of per-kick timers?
//
// In-memory timers do not survive a process restart. The sweep runs once at
// startup (catching anything that expired while the process was down) and
// then on a fixed interval. Correctness never depends on it: join attempts
// independently ignore expired entries, so the sweep is pure hygiene and a
// missed run degrades gracefully.
type Reconciler struct {
	repository Repository
	interval   time.Duration
	logger     *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReconciler constructs a [Reconciler] with the given sweep interval.
func NewReconciler(repo Repository, interval time.Duration, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		repository: repo,
		interval:   interval,
		logger:     logger,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the background sweep loop.
//
// The first sweep runs immediately, compensating for kick windows that
// expired while the process was not running.
func (reconciler *Reconciler) Start(ctx context.Context) {
	go reconciler.run(ctx)
}

// Stop signals the loop to exit and blocks until the in-flight sweep (if any)
// has finished.
func (reconciler *Reconciler) Stop() {
	close(reconciler.stopCh)
	<-reconciler.doneCh
}

// run is the sweep loop. It exits when Stop is called or the context is
// cancelled.
func (reconciler *Reconciler) run(ctx context.Context) {
	defer close(reconciler.doneCh)

	// Startup sweep before the first tick.
	reconciler.sweep(ctx)

	ticker := time.NewTicker(reconciler.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reconciler.sweep(ctx)
		case <-reconciler.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep removes every expired non-forever kick entry and logs the outcome.
func (reconciler *Reconciler) sweep(ctx context.Context) {
	removed, err := reconciler.repository.RemoveExpiredKicks(ctx, time.Now())
	if err != nil {
		reconciler.logger.Error("kick_sweep_failed", slog.Any("error", err))
		return
	}

	if removed > 0 {
		reconciler.logger.Info("kick_sweep_completed", slog.Int64("removed", removed))
	}
}
