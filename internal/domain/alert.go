package domain

import (
	"fmt"
	"time"
)

// AlertRecord is a request for user-visible notification. Producers create
// them; the dispatcher deduplicates, queues and escalates them by priority.
type AlertRecord struct {
	ID          string        `json:"id"`
	Type        AlertType     `json:"type"`
	Priority    AlertPriority `json:"priority"`
	Message     string        `json:"message"`
	TaskID      int64         `json:"task_id,omitempty"`
	DedupKey    string        `json:"dedup_key,omitempty"`
	MinInterval time.Duration `json:"min_interval"`
	ShowPopup   bool          `json:"show_popup"`
	WantsPush   bool          `json:"wants_push"`
	CreatedAt   time.Time     `json:"created_at"`
}

// DedupIdentity returns the key used to suppress repeated alerts: the
// explicit dedup key when set, otherwise type plus task id.
func (a AlertRecord) DedupIdentity() string {
	if a.DedupKey != "" {
		return a.DedupKey
	}
	return fmt.Sprintf("%s:%d", a.Type, a.TaskID)
}

// IsValid checks if the alert record has valid data.
func (a AlertRecord) IsValid() bool {
	if a.Type == "" || a.Message == "" {
		return false
	}
	return a.Priority.IsValid()
}
