package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"task-planner/internal/config"
	"task-planner/internal/logging"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	config *config.Config
	logger *zap.Logger
	errors *ErrorHandler

	// Tests inject a pre-wired engine; production builds one per invocation.
	engine *Engine
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand() *RootCommand {
	root := &RootCommand{
		errors: NewErrorHandler(),
	}

	root.cmd = &cobra.Command{
		Use:   "tp",
		Short: "A task scheduling and timer coordination engine",
		Long: `Task Planner (tp) schedules tasks into your working day and keeps
exactly one task timer running at a time.

EXAMPLES:
  tp add "Write report" 90                 # Add a task with a 90 minute estimate
  tp suggest 90                            # Suggest free slots for 90 minutes of work
  tp schedule 3 2026-08-28 10:00           # Schedule task 3 at a specific slot
  tp start 3                               # Start the timer for task 3
  tp switch 3 5                            # Pause task 3's timer, start task 5's
  tp interrupt 3 45                        # Record a 45 minute interruption and reflow the day
  tp stop 3                                # Stop the timer and record time spent
  tp status                                # Show the active timer and today's plan
  tp watch                                 # Run the sync, idle and alert loops

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > config file > defaults

  The config file is TOML, by default at ~/.tp/config.toml.

  Common environment variables:
    TP_DB_DIR                              Data directory (default: ~/.tp)
    TP_HOURS_DAY_START                     Working day start (default: 09:00)
    TP_HOURS_DAY_END                       Working day end (default: 17:30)
    TP_SCHED_DAILY_CAPACITY                Daily capacity in minutes (default: 420)
    TP_SCHED_CASCADE_GAP                   Gap inserted between cascaded tasks (default: 5)
    TP_TIMER_SYNC_INTERVAL                 Shared state poll interval (default: 5s)
    TP_TIMER_IDLE_THRESHOLD                Idle nudge threshold (default: 15m)
    TP_ALERTS_PUSH_ENDPOINT                ntfy-compatible push endpoint (default: disabled)
    TP_APP_LOG_LEVEL                       Log level (default: info)

GETTING HELP:
  tp [command] --help                      # Get help for any specific command`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// NewRootCommandWithEngine creates a root command over an injected engine
func NewRootCommandWithEngine(engine *Engine) *RootCommand {
	root := NewRootCommand()
	root.engine = engine
	root.config = engine.Config
	root.logger = engine.Logger
	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Path to TOML config file (default: ~/.tp/config.toml)")
	flags.String("db-dir", "", "Data directory (overrides TP_DB_DIR)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides TP_APP_LOG_LEVEL)")
	flags.Duration("app-timeout", 0, "Command timeout (overrides TP_APP_TIMEOUT)")
}

// setup loads configuration, applies flag overrides and builds the logger.
// Skipped when an engine was injected.
func (r *RootCommand) setup() error {
	if r.engine != nil {
		return nil
	}

	flags := r.cmd.PersistentFlags()

	configPath, _ := flags.GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	cfg, err := config.NewLoader().Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if dbDir, _ := flags.GetString("db-dir"); dbDir != "" {
		cfg.Database.Dir = dbDir
	}
	if logLevel, _ := flags.GetString("log-level"); logLevel != "" {
		cfg.Application.LogLevel = logLevel
	}
	if appTimeout, _ := flags.GetDuration("app-timeout"); appTimeout > 0 {
		cfg.Application.Timeout = appTimeout
	}

	logger, err := logging.New(cfg.Application.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	r.config = cfg
	r.logger = logger
	return nil
}

// withEngine runs fn against a wired engine inside the command timeout
func (r *RootCommand) withEngine(fn func(ctx context.Context, e *Engine) error) error {
	engine := r.engine
	if engine == nil {
		built, err := NewEngine(r.config, r.logger)
		if err != nil {
			return err
		}
		defer built.Close()
		engine = built
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	return fn(ctx, engine)
}

func (r *RootCommand) timeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newAddCommand(),
		r.newListCommand(),
		r.newCompleteCommand(),
		r.newDeleteCommand(),
		r.newStartCommand(),
		r.newStopCommand(),
		r.newPauseCommand(),
		r.newResumeCommand(),
		r.newSwitchCommand(),
		r.newInterruptCommand(),
		r.newSuggestCommand(),
		r.newScheduleCommand(),
		r.newStatusCommand(),
		r.newOrderCommand(),
		r.newMoveCommand(),
		r.newWatchCommand(),
	)
}
