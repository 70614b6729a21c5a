// Package taskstore implements the Task Store collaborator: it owns task
// records (title, estimate, schedule fields) while the engine owns only
// scheduling metadata. The engine writes back due date and due time when
// rescheduling, and the accumulated time when a timer stops.
package taskstore

import (
	"context"
	"time"

	"task-planner/internal/domain"
)

// Store defines the task persistence contract the engine depends on
type Store interface {
	// Create and read operations used by the CLI surface
	CreateTask(ctx context.Context, task *domain.TaskRef) error
	GetTask(ctx context.Context, id int64) (*domain.TaskRef, error)
	ListTasks(ctx context.Context) ([]*domain.TaskRef, error)
	DeleteTask(ctx context.Context, id int64) error
	MarkCompleted(ctx context.Context, id int64) error

	// Collaborator contract used by the scheduling engine
	TasksForDate(ctx context.Context, date time.Time) ([]*domain.TaskRef, error)
	UpdateSchedule(ctx context.Context, id int64, dueDate *time.Time, dueMinute *domain.MinuteOfDay) error
	RecordTimeSpent(ctx context.Context, id int64, minutes int) error

	// Utility
	Close() error
}
