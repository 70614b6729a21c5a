package scheduling

import (
	"context"
	"time"

	"go.uber.org/zap"

	"task-planner/internal/config"
	"task-planner/internal/domain"
)

// ScheduleWriter is the slice of the task store the rescheduler needs
type ScheduleWriter interface {
	TasksForDate(ctx context.Context, date time.Time) ([]*domain.TaskRef, error)
	UpdateSchedule(ctx context.Context, id int64, dueDate *time.Time, dueMinute *domain.MinuteOfDay) error
}

// Rescheduler applies cascade plans to the task store when a task's actual
// duration diverges from its estimate.
type Rescheduler struct {
	cfg    *config.Config
	tasks  ScheduleWriter
	logger *zap.Logger
}

// NewRescheduler creates a cascade rescheduler
func NewRescheduler(cfg *config.Config, tasks ScheduleWriter, logger *zap.Logger) *Rescheduler {
	return &Rescheduler{cfg: cfg, tasks: tasks, logger: logger}
}

// Apply recomputes and persists start times for the tasks following the
// anchor on the given day. anchorEnd is the anchor's new effective end: for
// an overrun that is new_start plus duration, for an interruption the
// interruption start plus the injected gap. Overflow candidates are
// returned to the caller undecided.
func (r *Rescheduler) Apply(ctx context.Context, date time.Time, anchorID int64, anchorEnd domain.MinuteOfDay) (CascadeResult, error) {
	dayTasks, err := r.tasks.TasksForDate(ctx, date)
	if err != nil {
		return CascadeResult{}, err
	}

	result := CascadePlan(dayTasks, anchorID, anchorEnd, r.cfg.Scheduling.CascadeGapMinutes, r.cfg.DayEndMinute())

	for _, move := range result.Moves {
		start := move.NewStart
		if err := r.tasks.UpdateSchedule(ctx, move.TaskID, &date, &start); err != nil {
			return result, err
		}
		r.logger.Info("task rescheduled",
			zap.Int64("task_id", move.TaskID),
			zap.String("old_start", move.OldStart.String()),
			zap.String("new_start", move.NewStart.String()))
	}

	if len(result.Overflow) > 0 {
		r.logger.Warn("cascade overflow: tasks need an explicit decision",
			zap.Int("count", len(result.Overflow)),
			zap.String("date", domain.DateKey(date)))
	}

	return result, nil
}
