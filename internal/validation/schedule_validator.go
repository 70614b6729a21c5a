package validation

import (
	"strings"
	"time"
)

// Interruptions and estimates beyond a full day are almost certainly input
// mistakes.
const maxDurationMinutes = 24 * 60

// ScheduleValidator validates inputs to the scheduling and timer operations
type ScheduleValidator struct{}

// NewScheduleValidator creates a new schedule validator
func NewScheduleValidator() *ScheduleValidator {
	return &ScheduleValidator{}
}

// ValidateTaskID checks that a task id is positive
func (sv *ScheduleValidator) ValidateTaskID(id int64) error {
	if id <= 0 {
		ve := NewValidationError()
		ve.AddRangeError("task_id", id, "task id must be positive")
		return ve
	}
	return nil
}

// ValidateTitle checks that a task title is present and not absurdly long
func (sv *ScheduleValidator) ValidateTitle(title string) error {
	ve := NewValidationError()
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		ve.AddRequiredError("title")
		return ve
	}
	if len(trimmed) > 255 {
		ve.AddRangeError("title", title, "title must be at most 255 characters")
		return ve
	}
	return nil
}

// ValidateEstimate checks that an estimated duration is usable for slot
// search and cascades
func (sv *ScheduleValidator) ValidateEstimate(minutes int) error {
	if minutes <= 0 || minutes > maxDurationMinutes {
		ve := NewValidationError()
		ve.AddRangeError("estimate_minutes", minutes, "estimate must be between 1 minute and 24 hours")
		return ve
	}
	return nil
}

// ValidateInterruption checks the injected gap of an interruption
func (sv *ScheduleValidator) ValidateInterruption(minutes int) error {
	if minutes <= 0 || minutes > maxDurationMinutes {
		ve := NewValidationError()
		ve.AddRangeError("interruption_minutes", minutes, "interruption must be between 1 minute and 24 hours")
		return ve
	}
	return nil
}

// ValidateDate checks that a date is not zero
func (sv *ScheduleValidator) ValidateDate(date time.Time) error {
	if date.IsZero() {
		ve := NewValidationError()
		ve.AddRequiredError("date")
		return ve
	}
	return nil
}
