package domain

import (
	"time"
)

// TimerRecord tracks accumulated work time for a single task. One record
// exists per task that has ever been started; it is removed when the task
// is stopped or completed.
//
// Invariant: at most one record system-wide is active (running, not paused,
// not interrupted) at any observed instant.
type TimerRecord struct {
	TaskID             int64      `json:"task_id"`
	StartTime          *time.Time `json:"start_time"`
	Running            bool       `json:"is_running"`
	Paused             bool       `json:"is_paused"`
	Interrupted        bool       `json:"is_interrupted"`
	PausedAt           *time.Time `json:"paused_at"`
	AccumulatedSeconds int        `json:"accumulated_seconds"`
	LastUpdated        time.Time  `json:"last_updated"`
}

// NewTimerRecord creates a running timer record started at the given instant.
func NewTimerRecord(taskID int64, startTime time.Time) TimerRecord {
	return TimerRecord{
		TaskID:      taskID,
		StartTime:   &startTime,
		Running:     true,
		LastUpdated: startTime,
	}
}

// IsActive reports whether this record is the active timer: running and
// neither paused nor interrupted.
func (r TimerRecord) IsActive() bool {
	return r.Running && !r.Paused && !r.Interrupted
}

// Elapsed returns the total accumulated time including the currently
// ticking segment, if any.
func (r TimerRecord) Elapsed(now time.Time) time.Duration {
	total := time.Duration(r.AccumulatedSeconds) * time.Second
	if r.IsActive() && r.StartTime != nil {
		total += now.Sub(*r.StartTime)
	}
	return total
}

// IsValid checks if the timer record has consistent data.
func (r TimerRecord) IsValid() bool {
	if r.TaskID <= 0 {
		return false
	}
	if r.AccumulatedSeconds < 0 {
		return false
	}
	if r.IsActive() && r.StartTime == nil {
		return false
	}
	return true
}

// IdlePeriod records a span during which no timer was active. Idle periods
// feed the learned daily buffer estimate.
type IdlePeriod struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Minutes int       `json:"minutes"`
}

// NewIdlePeriod creates an idle period with its derived minute count.
func NewIdlePeriod(start, end time.Time) IdlePeriod {
	return IdlePeriod{
		Start:   start,
		End:     end,
		Minutes: int(end.Sub(start).Minutes()),
	}
}
