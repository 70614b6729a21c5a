package taskstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/taskstore/migrations"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface on a local sqlite database
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new sqlite task store, running pending migrations
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("open task database", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewStoreUnavailableError("run task migrations", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTask creates a new task record
func (s *SQLiteStore) CreateTask(ctx context.Context, task *domain.TaskRef) error {
	query := `
	INSERT INTO tasks (title, estimate_minutes, due_date, due_minute, priority, completed)
	VALUES (?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		task.Title, task.EstimateMinutes, formatDate(task.DueDate), formatMinute(task.DueMinute),
		string(task.Priority), task.Completed)
	if err != nil {
		return errors.NewStoreUnavailableError("create task", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewStoreUnavailableError("create task", err)
	}
	task.ID = id
	return nil
}

// GetTask retrieves a task by ID
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*domain.TaskRef, error) {
	query := `
	SELECT id, title, estimate_minutes, due_date, due_minute, priority, completed
	FROM tasks WHERE id = ?`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("task", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, errors.NewStoreUnavailableError("get task", err)
	}
	return task, nil
}

// ListTasks retrieves all non-completed tasks
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]*domain.TaskRef, error) {
	query := `
	SELECT id, title, estimate_minutes, due_date, due_minute, priority, completed
	FROM tasks WHERE completed = 0 ORDER BY due_date, due_minute, id`

	return s.queryTasks(ctx, query)
}

// DeleteTask deletes a task by ID
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return errors.NewStoreUnavailableError("delete task", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStoreUnavailableError("delete task", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("task", fmt.Sprintf("%d", id))
	}
	return nil
}

// MarkCompleted flags a task as done
func (s *SQLiteStore) MarkCompleted(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = 1 WHERE id = ?`, id)
	if err != nil {
		return errors.NewStoreUnavailableError("mark task completed", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStoreUnavailableError("mark task completed", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("task", fmt.Sprintf("%d", id))
	}
	return nil
}

// TasksForDate retrieves all tasks due on the given calendar date
func (s *SQLiteStore) TasksForDate(ctx context.Context, date time.Time) ([]*domain.TaskRef, error) {
	query := `
	SELECT id, title, estimate_minutes, due_date, due_minute, priority, completed
	FROM tasks WHERE due_date = ? ORDER BY due_minute, id`

	return s.queryTasks(ctx, query, domain.DateKey(date))
}

// UpdateSchedule writes back the schedule fields of a task. Nil clears the
// corresponding field.
func (s *SQLiteStore) UpdateSchedule(ctx context.Context, id int64, dueDate *time.Time, dueMinute *domain.MinuteOfDay) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET due_date = ?, due_minute = ? WHERE id = ?`,
		formatDate(dueDate), formatMinute(dueMinute), id)
	if err != nil {
		return errors.NewStoreUnavailableError("update task schedule", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStoreUnavailableError("update task schedule", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("task", fmt.Sprintf("%d", id))
	}
	return nil
}

// RecordTimeSpent adds finalized timer minutes to the task's time-spent field
func (s *SQLiteStore) RecordTimeSpent(ctx context.Context, id int64, minutes int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET time_spent_minutes = time_spent_minutes + ? WHERE id = ?`,
		minutes, id)
	if err != nil {
		return errors.NewStoreUnavailableError("record time spent", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStoreUnavailableError("record time spent", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("task", fmt.Sprintf("%d", id))
	}
	return nil
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*domain.TaskRef, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("query tasks", err)
	}
	defer rows.Close()

	var tasks []*domain.TaskRef
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, errors.NewStoreUnavailableError("scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreUnavailableError("iterate tasks", err)
	}
	return tasks, nil
}
