// Package scheduling holds the slot suggestion, cascade rescheduling and
// day ordering logic. The planning functions are pure; thin services wrap
// them with store access.
package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"task-planner/internal/config"
	"task-planner/internal/domain"
	"task-planner/internal/validation"
)

// Slot is a proposed (date, start time) pair for an unscheduled task
type Slot struct {
	Date            time.Time
	Start           domain.MinuteOfDay
	DurationMinutes int
}

// End returns the minute at which the proposed slot finishes
func (s Slot) End() domain.MinuteOfDay {
	return s.Start + domain.MinuteOfDay(s.DurationMinutes)
}

// TaskSource provides the read-only snapshot of scheduled tasks
type TaskSource interface {
	TasksForDate(ctx context.Context, date time.Time) ([]*domain.TaskRef, error)
}

// BufferFunc returns learned buffer minutes to subtract from a day's
// capacity. May be nil.
type BufferFunc func(ctx context.Context) int

// Suggester proposes free slots for unscheduled work against the daily
// capacity model.
type Suggester struct {
	cfg       *config.Config
	tasks     TaskSource
	clock     clockwork.Clock
	buffer    BufferFunc
	validator *validation.ScheduleValidator
}

// NewSuggester creates a slot suggester
func NewSuggester(cfg *config.Config, tasks TaskSource, clock clockwork.Clock) *Suggester {
	return &Suggester{
		cfg:       cfg,
		tasks:     tasks,
		clock:     clock,
		validator: validation.NewScheduleValidator(),
	}
}

// WithIdleBuffer wires a learned buffer estimate into the capacity check
func (s *Suggester) WithIdleBuffer(fn BufferFunc) *Suggester {
	s.buffer = fn
	return s
}

// Suggest proposes up to the configured number of candidate slots for a
// task of the given duration, soonest first. An empty result means no
// capacity was found within the horizon; retrying is the caller's call.
func (s *Suggester) Suggest(ctx context.Context, durationMinutes int) ([]Slot, error) {
	if err := s.validator.ValidateEstimate(durationMinutes); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	capacity := s.cfg.Scheduling.DailyCapacityMinutes
	if s.cfg.Scheduling.UseIdleBuffer && s.buffer != nil {
		capacity -= s.buffer(ctx)
	}

	var slots []Slot
	for offset := 0; offset < s.cfg.Scheduling.HorizonDays; offset++ {
		date := now.AddDate(0, 0, offset)
		if !s.cfg.IsWorkDay(date.Weekday()) {
			continue
		}

		dayTasks, err := s.tasks.TasksForDate(ctx, date)
		if err != nil {
			return nil, err
		}

		// Coarse capacity gate before any slot search.
		if capacity-scheduledMinutes(dayTasks) < durationMinutes {
			continue
		}

		start, ok := s.findSlot(dayTasks, durationMinutes, now, offset == 0)
		if !ok {
			continue
		}

		slots = append(slots, Slot{Date: date, Start: start, DurationMinutes: durationMinutes})
		if len(slots) >= s.cfg.Scheduling.MaxSuggestions {
			break
		}
	}

	return slots, nil
}

// findSlot returns the first gap of sufficient length between the day's
// occupied intervals, bounded by the working window.
func (s *Suggester) findSlot(dayTasks []*domain.TaskRef, durationMinutes int, now time.Time, today bool) (domain.MinuteOfDay, bool) {
	occupied := occupiedIntervals(dayTasks, s.cfg.LunchInterval())

	cursor := s.cfg.DayStartMinute()
	if today {
		earliest := now.Add(time.Duration(s.cfg.Scheduling.LeadTimeMinutes) * time.Minute)
		quantized := roundUpToGrid(domain.MinuteOfDay(earliest.Hour()*60+earliest.Minute()), s.cfg.Scheduling.GridMinutes)
		if quantized > cursor {
			cursor = quantized
		}
	}

	dayEnd := s.cfg.DayEndMinute()
	need := domain.MinuteOfDay(durationMinutes)

	for _, interval := range occupied {
		if interval.End <= cursor {
			continue
		}
		if interval.Start >= cursor+need {
			break
		}
		if interval.End > cursor {
			cursor = interval.End
		}
	}

	if cursor+need > dayEnd {
		return 0, false
	}
	return cursor, true
}

// scheduledMinutes sums the estimates of the day's open tasks. Completed
// work frees its capacity, matching the cascade's view of the day.
func scheduledMinutes(tasks []*domain.TaskRef) int {
	total := 0
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		total += task.EstimateMinutes
	}
	return total
}

// occupiedIntervals builds the sorted list of busy intervals for a day:
// the fixed lunch interval plus every open scheduled task's interval. A
// day with no scheduled tasks still carries lunch.
func occupiedIntervals(tasks []*domain.TaskRef, lunch domain.Interval) []domain.Interval {
	intervals := []domain.Interval{lunch}
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		if interval, ok := task.ScheduledInterval(); ok {
			intervals = append(intervals, interval)
		}
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
	return intervals
}

// roundUpToGrid quantizes a minute of day up to the next grid boundary
func roundUpToGrid(m domain.MinuteOfDay, grid int) domain.MinuteOfDay {
	g := domain.MinuteOfDay(grid)
	remainder := m % g
	if remainder == 0 {
		return m
	}
	return m + g - remainder
}
