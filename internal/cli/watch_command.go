package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"task-planner/internal/statestore"
	"task-planner/internal/syncer"
)

// newWatchCommand creates the "watch" subcommand
func (r *RootCommand) newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the sync, idle and alert loops",
		Long: `Run the engine's background loops in the foreground until interrupted:

  - the sync loop re-derives the active timer from shared state, repairs
    the active pointer and checks the running task for overruns
  - the idle detector nudges when no timer runs during working hours
  - the state watcher triggers an immediate sync when another context
    changes a timer record

Alerts fire through the log and, when configured, the push endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runWatch()
		},
	}
}

// runWatch wires and runs the background loops until SIGINT or SIGTERM
func (r *RootCommand) runWatch() error {
	engine := r.engine
	if engine == nil {
		built, err := NewEngine(r.config, r.logger)
		if err != nil {
			return err
		}
		defer built.Close()
		engine = built
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A failed probe downgrades nothing; alerts still reach the in-app
	// tiers, only the push channel stays quiet.
	if engine.Pusher.Enabled() {
		if err := engine.Pusher.Probe(ctx); err != nil {
			engine.Logger.Warn("push endpoint unreachable", zap.Error(err))
		}
	}

	sync := syncer.New(engine.Config.Timer.SyncInterval, engine.Coordinator.Rescan, engine.Clock, engine.Logger)

	// Timer writes by other contexts land on the next poll; the watcher
	// turns them into an immediate pass instead.
	engine.Watcher.Subscribe(statestore.TimerKeyPrefix, func(key string, value []byte) {
		sync.Kick()
	})

	go engine.Watcher.Run(ctx)
	go engine.Idle.Run(ctx)
	go sync.Run(ctx)

	fmt.Println("Watching; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	engine.Logger.Info("shutting down", zap.String("signal", sig.String()))
	sync.Stop()
	engine.Idle.Stop()
	engine.Watcher.Stop()
	cancel()

	return nil
}
