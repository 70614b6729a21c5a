package domain

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date format used in store keys and
// schedule fields.
const DateLayout = "2006-01-02"

// DateKey formats a time as a calendar date string.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// MinuteOfDay is a time of day expressed as minutes after midnight.
type MinuteOfDay int

// ParseMinuteOfDay parses an "HH:MM" string into a MinuteOfDay.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(s, "%d:%d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return MinuteOfDay(hours*60 + minutes), nil
}

// String formats the minute of day as "HH:MM".
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// At combines a calendar date with this time of day.
func (m MinuteOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(m)/60, int(m)%60, 0, 0, date.Location())
}

// Interval is a half-open [Start, End) range of minutes within one day.
type Interval struct {
	Start MinuteOfDay
	End   MinuteOfDay
}

// Overlaps reports whether two intervals share any minute.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Minutes returns the length of the interval in minutes.
func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

// TaskRef is the engine's view of a task record owned by the Task Store.
// The engine reads it for scheduling and writes back only the schedule
// fields (due date and due minute).
type TaskRef struct {
	ID              int64
	Title           string
	EstimateMinutes int
	DueDate         *time.Time
	DueMinute       *MinuteOfDay
	Priority        Priority
	Completed       bool
}

// NewTaskRef creates a task reference with the given title and estimate.
func NewTaskRef(title string, estimateMinutes int) TaskRef {
	return TaskRef{
		Title:           title,
		EstimateMinutes: estimateMinutes,
		Priority:        PriorityNormal,
	}
}

// IsValid checks if the task reference has valid data.
func (t TaskRef) IsValid() bool {
	if t.Title == "" {
		return false
	}
	if t.EstimateMinutes <= 0 {
		return false
	}
	return t.Priority.IsValid()
}

// IsScheduled reports whether the task has both a due date and a due time.
func (t TaskRef) IsScheduled() bool {
	return t.DueDate != nil && t.DueMinute != nil
}

// ScheduledInterval returns the task's occupied interval within its day.
func (t TaskRef) ScheduledInterval() (Interval, bool) {
	if !t.IsScheduled() {
		return Interval{}, false
	}
	start := *t.DueMinute
	return Interval{Start: start, End: start + MinuteOfDay(t.EstimateMinutes)}, true
}

// String returns the task title for display purposes.
func (t TaskRef) String() string {
	return t.Title
}
