package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"task-planner/internal/domain"
)

// newSuggestCommand creates the "suggest" subcommand
func (r *RootCommand) newSuggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [duration-minutes]",
		Short: "Suggest free slots for a task",
		Long: `Suggest candidate slots for the given amount of work, soonest first.

Slots respect working hours, the lunch break, the daily capacity and a
short lead time before the first slot of today. An empty result means no
day within the horizon has room; shorten the task or clear a day.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration %q: expected minutes", args[0])
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				slots, err := e.Suggester.Suggest(ctx, minutes)
				if err != nil {
					return r.errors.Handle("suggest slots", err)
				}
				if len(slots) == 0 {
					fmt.Println("No free slots within the horizon; try a shorter duration or clear a day")
					return nil
				}

				rows := make([][]string, 0, len(slots))
				for i, slot := range slots {
					rows = append(rows, []string{
						fmt.Sprintf("%d", i+1),
						domain.DateKey(slot.Date),
						slot.Date.Format("Mon"),
						slot.Start.String(),
						slot.End().String(),
					})
				}
				fmt.Println(renderTable(
					[]string{"#", "Date", "Day", "Start", "End"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}

// newScheduleCommand creates the "schedule" subcommand
func (r *RootCommand) newScheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [task-id] [date] [time]",
		Short: "Schedule a task at a specific slot",
		Long: `Assign a task a due date and start time, typically one suggested by
"tp suggest".

Example:
  tp schedule 3 2026-08-28 10:00`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			date, err := time.ParseInLocation(domain.DateLayout, args[1], time.Local)
			if err != nil {
				return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", args[1])
			}
			minute, err := domain.ParseMinuteOfDay(args[2])
			if err != nil {
				return err
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				if _, err := e.Tasks.GetTask(ctx, id); err != nil {
					return r.errors.Handle("schedule task", err)
				}
				if err := e.Tasks.UpdateSchedule(ctx, id, &date, &minute); err != nil {
					return r.errors.Handle("schedule task", err)
				}
				fmt.Printf("Scheduled task %d at %s %s\n", id, args[1], minute)
				return nil
			})
		},
	}
}

// newOrderCommand creates the "order" subcommand
func (r *RootCommand) newOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "order [date] [task-ids]",
		Short: "Set the manual task order for a day",
		Long: `Set the manual ordering of a day's tasks as a comma-separated id list.
Tasks left out of the list follow the ordered ones, by start time.

Example:
  tp order 2026-08-28 5,3,8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := time.ParseInLocation(domain.DateLayout, args[0], time.Local); err != nil {
				return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", args[0])
			}

			parts := strings.Split(args[1], ",")
			ids := make([]int64, 0, len(parts))
			for _, part := range parts {
				id, err := parseTaskID(strings.TrimSpace(part))
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			return r.withEngine(func(ctx context.Context, e *Engine) error {
				if err := e.Orders.Reorder(ctx, args[0], ids); err != nil {
					return r.errors.Handle("reorder day", err)
				}
				fmt.Printf("Reordered %d tasks on %s\n", len(ids), args[0])
				return nil
			})
		},
	}
}

// newMoveCommand creates the "move" subcommand
func (r *RootCommand) newMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move [task-id] [date]",
		Short: "Move a task to another day",
		Long: `Move a task to another day, keeping its start time when it has one. The
task leaves its old day's manual order and joins the end of the new day's.

Example:
  tp move 3 2026-08-29`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			date, err := time.ParseInLocation(domain.DateLayout, args[1], time.Local)
			if err != nil {
				return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", args[1])
			}
			return r.withEngine(func(ctx context.Context, e *Engine) error {
				task, err := e.Tasks.GetTask(ctx, id)
				if err != nil {
					return r.errors.Handle("move task", err)
				}

				if err := e.Tasks.UpdateSchedule(ctx, id, &date, task.DueMinute); err != nil {
					return r.errors.Handle("move task", err)
				}
				if task.DueDate != nil {
					from := domain.DateKey(*task.DueDate)
					if err := e.Orders.MoveTask(ctx, id, from, args[1]); err != nil {
						return r.errors.Handle("move task", err)
					}
				}

				fmt.Printf("Moved task %d to %s\n", id, args[1])
				return nil
			})
		},
	}
}
