// Package syncer runs the periodic reconciliation loop that keeps each
// open context's picture of shared state fresh.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// SyncFunc performs one reconciliation pass
type SyncFunc func(ctx context.Context) error

// Syncer invokes a reconciliation function on a fixed interval, with an
// out-of-band kick for callers that just wrote shared state and want the
// next pass now rather than at the next tick.
type Syncer struct {
	interval time.Duration
	fn       SyncFunc
	clock    clockwork.Clock
	logger   *zap.Logger

	kickCh chan struct{}
	stopCh chan struct{}
	once   sync.Once
}

// New creates a syncer with the given poll interval
func New(interval time.Duration, fn SyncFunc, clock clockwork.Clock, logger *zap.Logger) *Syncer {
	return &Syncer{
		interval: interval,
		fn:       fn,
		clock:    clock,
		logger:   logger,
		kickCh:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Run executes sync passes until the context is canceled or Stop is
// called. A pass runs immediately on startup so a fresh context converges
// without waiting out the first interval.
func (s *Syncer) Run(ctx context.Context) {
	s.logger.Info("sync loop started", zap.Duration("interval", s.interval))

	s.pass(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.pass(ctx)
		case <-s.kickCh:
			s.pass(ctx)
		case <-s.stopCh:
			s.logger.Info("sync loop stopped")
			return
		case <-ctx.Done():
			s.logger.Info("sync loop stopped", zap.Error(ctx.Err()))
			return
		}
	}
}

// Kick requests an immediate pass. Non-blocking; a pending kick is enough.
func (s *Syncer) Kick() {
	select {
	case s.kickCh <- struct{}{}:
	default:
	}
}

// Stop terminates the loop
func (s *Syncer) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

func (s *Syncer) pass(ctx context.Context) {
	if err := s.fn(ctx); err != nil {
		s.logger.Warn("sync pass failed", zap.Error(err))
	}
}
