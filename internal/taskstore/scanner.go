package taskstore

import (
	"time"

	"task-planner/internal/domain"
)

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan helper
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTask reads one task row into a domain task reference
func scanTask(row rowScanner) (*domain.TaskRef, error) {
	var (
		task      domain.TaskRef
		dueDate   *string
		dueMinute *int
		priority  string
	)

	err := row.Scan(&task.ID, &task.Title, &task.EstimateMinutes, &dueDate, &dueMinute, &priority, &task.Completed)
	if err != nil {
		return nil, err
	}

	task.DueDate = parseDate(dueDate)
	if dueMinute != nil {
		m := domain.MinuteOfDay(*dueMinute)
		task.DueMinute = &m
	}
	task.Priority = domain.Priority(priority)
	if !task.Priority.IsValid() {
		task.Priority = domain.PriorityNormal
	}
	return &task, nil
}

// formatDate renders a due date for storage, nil staying NULL
func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := domain.DateKey(*t)
	return &s
}

// parseDate reads a stored due date; unparseable values read as unscheduled
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, *s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

// formatMinute renders a due minute for storage, nil staying NULL
func formatMinute(m *domain.MinuteOfDay) *int {
	if m == nil {
		return nil
	}
	v := int(*m)
	return &v
}
