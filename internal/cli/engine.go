// Package cli wires the scheduling engine behind a command-line surface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"task-planner/internal/alerts"
	"task-planner/internal/config"
	"task-planner/internal/scheduling"
	"task-planner/internal/statestore"
	"task-planner/internal/taskstore"
	"task-planner/internal/timer"
)

// idleBufferWindowDays is the trailing window the learned buffer averages over
const idleBufferWindowDays = 7

// Engine bundles the engine's services behind one construction point. The
// CLI commands and the watch daemon both run against an Engine.
type Engine struct {
	Config      *config.Config
	Logger      *zap.Logger
	Clock       clockwork.Clock
	Tasks       taskstore.Store
	State       statestore.Store
	Coordinator *timer.Coordinator
	Idle        *timer.IdleDetector
	Suggester   *scheduling.Suggester
	Rescheduler *scheduling.Rescheduler
	Orders      *scheduling.OrderBook
	Dispatcher  *alerts.Dispatcher
	Pusher      alerts.Pusher
	Watcher     *statestore.Watcher
}

// NewEngine builds a fully wired engine against the configured stores
func NewEngine(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if err := os.MkdirAll(cfg.Database.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tasks, err := taskstore.New(cfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}

	state, err := statestore.NewSQLiteStore(filepath.Join(cfg.Database.Dir, "state.db"))
	if err != nil {
		tasks.Close()
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	return NewEngineWithStores(cfg, logger, tasks, state, clockwork.NewRealClock()), nil
}

// NewEngineWithStores wires an engine over injected collaborators. Tests
// use this with a memory store and a fake clock.
func NewEngineWithStores(cfg *config.Config, logger *zap.Logger, tasks taskstore.Store, state statestore.Store, clock clockwork.Clock) *Engine {
	presenter := alerts.NewLogPresenter(logger)
	pusher := alerts.NewPusher(cfg.Alerts)
	dispatcher := alerts.NewDispatcher(cfg.Alerts, presenter, pusher, clock, logger)

	resched := scheduling.NewRescheduler(cfg, tasks, logger)
	coordinator := timer.NewCoordinator(cfg, state, tasks, resched, dispatcher, clock, logger).
		WithRenderer(presenter)
	idle := timer.NewIdleDetector(cfg, state, dispatcher, clock, logger)

	suggester := scheduling.NewSuggester(cfg, tasks, clock)
	if cfg.Scheduling.UseIdleBuffer {
		suggester = suggester.WithIdleBuffer(func(ctx context.Context) int {
			minutes, err := idle.BufferEstimate(ctx, idleBufferWindowDays)
			if err != nil {
				logger.Warn("idle buffer estimate unavailable", zap.Error(err))
				return 0
			}
			return minutes
		})
	}

	watcher := statestore.NewWatcher(state, clock, cfg.Timer.SyncInterval, logger)

	return &Engine{
		Config:      cfg,
		Logger:      logger,
		Clock:       clock,
		Tasks:       tasks,
		State:       state,
		Coordinator: coordinator,
		Idle:        idle,
		Suggester:   suggester,
		Rescheduler: resched,
		Orders:      scheduling.NewOrderBook(state, clock),
		Dispatcher:  dispatcher,
		Pusher:      pusher,
		Watcher:     watcher,
	}
}

// Close releases both stores
func (e *Engine) Close() error {
	var firstErr error
	if err := e.Tasks.Close(); err != nil {
		firstErr = err
	}
	if err := e.State.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
