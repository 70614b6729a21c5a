package domain

// Priority represents the scheduling priority of a task.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// IsValid checks if the priority is one of the known values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// AlertPriority represents the delivery tier of an alert.
type AlertPriority string

const (
	AlertCritical AlertPriority = "critical"
	AlertHigh     AlertPriority = "high"
	AlertMedium   AlertPriority = "medium"
	AlertLow      AlertPriority = "low"
)

// IsValid checks if the alert priority is one of the known values.
func (p AlertPriority) IsValid() bool {
	switch p {
	case AlertCritical, AlertHigh, AlertMedium, AlertLow:
		return true
	}
	return false
}

// AlertType is the closed set of alert kinds the engine produces.
type AlertType string

const (
	AlertIdleDetected     AlertType = "idle_detected"
	AlertOverrunWarning   AlertType = "overrun_warning"
	AlertOverrunExceeded  AlertType = "overrun_exceeded"
	AlertScheduleConflict AlertType = "schedule_conflict"
	AlertScheduleOverflow AlertType = "schedule_overflow"
	AlertStoreWriteFailed AlertType = "store_write_failed"
)
