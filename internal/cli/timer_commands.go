package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"task-planner/internal/domain"
	"task-planner/internal/scheduling"
)

// newStartCommand creates the "start" subcommand
func (r *RootCommand) newStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start [task-id]",
		Short: "Start a task timer",
		Long: `Start the timer for a task.

Only one timer can run at a time. If another task's timer is active the
start is refused; use "tp switch" to move the timer explicitly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				record, err := e.Coordinator.Start(ctx, id)
				if err != nil {
					return r.errors.Handle("start timer", err)
				}
				fmt.Printf("Started timer for task %d at %s\n", id, record.StartTime.Format("15:04:05"))
				return nil
			})
		},
	}
}

// newStopCommand creates the "stop" subcommand
func (r *RootCommand) newStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [task-id]",
		Short: "Stop a task timer",
		Long:  "Stop the timer for a task and record the accumulated time against it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				var id int64
				if len(args) == 1 {
					parsed, err := parseTaskID(args[0])
					if err != nil {
						return err
					}
					id = parsed
				} else {
					active, err := e.Coordinator.Active(ctx)
					if err != nil {
						return r.errors.Handle("stop timer", err)
					}
					if active == nil {
						fmt.Println("No timer is running")
						return nil
					}
					id = active.TaskID
				}

				minutes, err := e.Coordinator.Stop(ctx, id)
				if err != nil {
					return r.errors.Handle("stop timer", err)
				}
				fmt.Printf("Stopped timer for task %d (%s recorded)\n", id, formatMinutes(minutes))
				return nil
			})
		},
	}
}

// newPauseCommand creates the "pause" subcommand
func (r *RootCommand) newPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause [task-id]",
		Short: "Pause a task timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				if err := e.Coordinator.Pause(ctx, id); err != nil {
					return r.errors.Handle("pause timer", err)
				}
				fmt.Printf("Paused timer for task %d\n", id)
				return nil
			})
		},
	}
}

// newResumeCommand creates the "resume" subcommand
func (r *RootCommand) newResumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resume [task-id]",
		Short: "Resume a paused or interrupted task timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				record, err := e.Coordinator.Resume(ctx, id)
				if err != nil {
					return r.errors.Handle("resume timer", err)
				}
				fmt.Printf("Resumed timer for task %d (%s accumulated)\n",
					id, formatElapsed(time.Duration(record.AccumulatedSeconds)*time.Second))
				return nil
			})
		},
	}
}

// newSwitchCommand creates the "switch" subcommand
func (r *RootCommand) newSwitchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "switch [from-task-id] [to-task-id]",
		Short: "Switch the timer to another task",
		Long:  "Pause the running task's timer and start the destination task's timer in one step.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			to, err := parseTaskID(args[1])
			if err != nil {
				return err
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				if _, err := e.Coordinator.Switch(ctx, from, to); err != nil {
					return r.errors.Handle("switch timer", err)
				}
				fmt.Printf("Switched timer from task %d to task %d\n", from, to)
				return nil
			})
		},
	}
}

// newInterruptCommand creates the "interrupt" subcommand
func (r *RootCommand) newInterruptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "interrupt [task-id] [minutes]",
		Short: "Record an interruption",
		Long: `Mark the running task's timer interrupted and inject the interruption's
duration into the day. Later tasks on the same day are pushed back to
absorb the gap; tasks that no longer fit are reported for a decision.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid duration %q: expected minutes", args[1])
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				result, err := e.Coordinator.Interrupt(ctx, id, minutes)
				if err != nil {
					return r.errors.Handle("record interruption", err)
				}

				fmt.Printf("Interrupted task %d for %s\n", id, formatMinutes(minutes))
				printCascade(result)
				return nil
			})
		},
	}
}

// printCascade reports the moves and overflow of a cascade
func printCascade(result scheduling.CascadeResult) {
	for _, move := range result.Moves {
		fmt.Printf("  moved %q from %s to %s\n", move.Title, move.OldStart, move.NewStart)
	}
	for _, task := range result.Overflow {
		fmt.Printf("  %q no longer fits today; reschedule or defer it\n", task.Title)
	}
}

// newStatusCommand creates the "status" subcommand
func (r *RootCommand) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active timer and today's plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				active, err := e.Coordinator.Active(ctx)
				if err != nil {
					return r.errors.Handle("show status", err)
				}
				now := e.Clock.Now()

				if active == nil {
					fmt.Println("No timer is running")
				} else {
					task, err := e.Tasks.GetTask(ctx, active.TaskID)
					title := fmt.Sprintf("task %d", active.TaskID)
					if err == nil {
						title = task.Title
					}
					fmt.Printf("Timing %q for %s\n", title, formatElapsed(active.Elapsed(now)))
				}

				date := domain.DateKey(now)
				tasks, err := e.Tasks.TasksForDate(ctx, now)
				if err != nil {
					return r.errors.Handle("show status", err)
				}
				if len(tasks) == 0 {
					fmt.Println("Nothing scheduled today")
					return nil
				}
				order, err := e.Orders.Get(ctx, date)
				if err != nil {
					return r.errors.Handle("show status", err)
				}
				fmt.Println(renderTasks(scheduling.SortTasksByOrder(tasks, order)))
				return nil
			})
		},
	}
}
