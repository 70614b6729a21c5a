package timer

import (
	"context"
	"sync"
	"time"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
)

// fakeTaskStore is an in-memory taskstore.Store for coordinator tests
type fakeTaskStore struct {
	mu        sync.Mutex
	nextID    int64
	tasks     map[int64]*domain.TaskRef
	timeSpent map[int64]int

	failRecordTimeSpent bool
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		nextID:    1,
		tasks:     make(map[int64]*domain.TaskRef),
		timeSpent: make(map[int64]int),
	}
}

func (f *fakeTaskStore) addTask(task domain.TaskRef) *domain.TaskRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = f.nextID
	f.nextID++
	f.tasks[task.ID] = &task
	return &task
}

func (f *fakeTaskStore) CreateTask(_ context.Context, task *domain.TaskRef) error {
	created := f.addTask(*task)
	task.ID = created.ID
	return nil
}

func (f *fakeTaskStore) GetTask(_ context.Context, id int64) (*domain.TaskRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, errors.NewNotFoundError("task", "unknown id")
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) ListTasks(_ context.Context) ([]*domain.TaskRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.TaskRef, 0, len(f.tasks))
	for _, task := range f.tasks {
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeTaskStore) DeleteTask(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) MarkCompleted(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return errors.NewNotFoundError("task", "unknown id")
	}
	task.Completed = true
	return nil
}

func (f *fakeTaskStore) TasksForDate(_ context.Context, date time.Time) ([]*domain.TaskRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := domain.DateKey(date)
	var out []*domain.TaskRef
	for _, task := range f.tasks {
		if task.DueDate != nil && domain.DateKey(*task.DueDate) == key {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) UpdateSchedule(_ context.Context, id int64, dueDate *time.Time, dueMinute *domain.MinuteOfDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return errors.NewNotFoundError("task", "unknown id")
	}
	task.DueDate = dueDate
	task.DueMinute = dueMinute
	return nil
}

func (f *fakeTaskStore) RecordTimeSpent(_ context.Context, id int64, minutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRecordTimeSpent {
		return errors.NewStoreUnavailableError("record time spent", nil)
	}
	f.timeSpent[id] += minutes
	return nil
}

func (f *fakeTaskStore) recordedMinutes(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timeSpent[id]
}

func (f *fakeTaskStore) Close() error { return nil }

// captureNotifier records dispatched alerts
type captureNotifier struct {
	mu     sync.Mutex
	alerts []domain.AlertRecord
}

func (n *captureNotifier) Dispatch(_ context.Context, alert domain.AlertRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *captureNotifier) byType(alertType domain.AlertType) []domain.AlertRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.AlertRecord
	for _, alert := range n.alerts {
		if alert.Type == alertType {
			out = append(out, alert)
		}
	}
	return out
}
