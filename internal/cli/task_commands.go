package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/scheduling"
)

// newAddCommand creates the "add" subcommand
func (r *RootCommand) newAddCommand() *cobra.Command {
	var (
		due      string
		at       string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "add [title] [estimate-minutes]",
		Short: "Add a new task",
		Long: `Add a task with a title and an estimate in minutes.

Examples:
  tp add "Write report" 90
  tp add "Review PR" 30 --due 2026-08-28 --at 14:00
  tp add "Fix login bug" 60 --priority urgent`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			estimate, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid estimate %q: expected minutes", args[1])
			}

			task := domain.NewTaskRef(args[0], estimate)
			if priority != "" {
				task.Priority = domain.Priority(priority)
			}
			if due != "" {
				date, err := time.ParseInLocation(domain.DateLayout, due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", due)
				}
				task.DueDate = &date
			}
			if at != "" {
				minute, err := domain.ParseMinuteOfDay(at)
				if err != nil {
					return err
				}
				task.DueMinute = &minute
			}

			return r.withEngine(func(ctx context.Context, e *Engine) error {
				if err := e.Tasks.CreateTask(ctx, &task); err != nil {
					return r.errors.Handle("add task", err)
				}
				fmt.Printf("Added task %d: %s (%s)\n", task.ID, task.Title, formatMinutes(task.EstimateMinutes))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&at, "at", "", "Scheduled start time (HH:MM)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: urgent, high, normal, low")
	return cmd
}

// newListCommand creates the "list" subcommand
func (r *RootCommand) newListCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks, optionally restricted to one day.

Examples:
  tp list                     # All tasks
  tp list --date 2026-08-28   # Tasks due on one day, in manual order`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				if date == "" {
					tasks, err := e.Tasks.ListTasks(ctx)
					if err != nil {
						return r.errors.Handle("list tasks", err)
					}
					fmt.Println(renderTasks(tasks))
					return nil
				}

				day, err := time.ParseInLocation(domain.DateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
				}
				tasks, err := e.Tasks.TasksForDate(ctx, day)
				if err != nil {
					return r.errors.Handle("list tasks", err)
				}
				order, err := e.Orders.Get(ctx, date)
				if err != nil {
					return r.errors.Handle("list tasks", err)
				}
				fmt.Println(renderTasks(scheduling.SortTasksByOrder(tasks, order)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Restrict to one day (YYYY-MM-DD)")
	return cmd
}

// newCompleteCommand creates the "complete" subcommand
func (r *RootCommand) newCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [task-id]",
		Short: "Mark a task completed",
		Long:  "Mark a task completed. A running timer for the task is stopped first and its time recorded.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				minutes, err := e.Coordinator.Stop(ctx, id)
				if err != nil && !errors.IsErrorType(err, errors.ErrorTypeInvalidState) {
					return r.errors.Handle("complete task", err)
				}
				if err == nil {
					fmt.Printf("Stopped timer for task %d (%s recorded)\n", id, formatMinutes(minutes))
				}

				if err := e.Tasks.MarkCompleted(ctx, id); err != nil {
					return r.errors.Handle("complete task", err)
				}
				fmt.Printf("Completed task %d\n", id)
				return nil
			})
		},
	}
}

// newDeleteCommand creates the "delete" subcommand
func (r *RootCommand) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [task-id]",
		Short: "Delete a task",
		Long:  "Delete a task. This operation cannot be undone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				// Clear any timer first so a dead record cannot keep
				// blocking starts in other contexts.
				if err := e.Coordinator.Clear(ctx, id); err != nil {
					return r.errors.Handle("delete task", err)
				}
				if err := e.Tasks.DeleteTask(ctx, id); err != nil {
					return r.errors.Handle("delete task", err)
				}
				fmt.Printf("Deleted task %d\n", id)
				return nil
			})
		},
	}
}

// parseTaskID parses a task id argument
func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}
