// Package timer owns the single-active-timer invariant and the timer
// lifecycle: start, pause, resume, interrupt, switch and stop, plus idle
// detection across the working day.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"task-planner/internal/config"
	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/scheduling"
	"task-planner/internal/statestore"
	"task-planner/internal/taskstore"
	"task-planner/internal/validation"
)

// Notifier is the alert sink the coordinator reports through
type Notifier interface {
	Dispatch(ctx context.Context, alert domain.AlertRecord) error
}

// Renderer receives timer state for display
type Renderer interface {
	ShowTimerState(record domain.TimerRecord)
}

// Coordinator enforces that at most one task timer is active at any moment
// across all open contexts. Every state change is a read-modify-write
// against the freshest persisted record; "which timer is active" is always
// re-derived from the store, never from an in-memory cache. Across contexts
// the invariant has a one-poll-interval staleness window by design.
type Coordinator struct {
	cfg       *config.Config
	store     statestore.Store
	tasks     taskstore.Store
	resched   *scheduling.Rescheduler
	notifier  Notifier
	renderer  Renderer
	clock     clockwork.Clock
	logger    *zap.Logger
	validator *validation.ScheduleValidator

	mu sync.Mutex
	// Overrun cascades fire on the rising edge of the classification, not
	// on every rescan tick.
	overrunLevels map[int64]scheduling.OverrunLevel
}

// NewCoordinator creates a timer coordinator
func NewCoordinator(cfg *config.Config, store statestore.Store, tasks taskstore.Store, resched *scheduling.Rescheduler, notifier Notifier, clock clockwork.Clock, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		cfg:           cfg,
		store:         store,
		tasks:         tasks,
		resched:       resched,
		notifier:      notifier,
		clock:         clock,
		logger:        logger,
		validator:     validation.NewScheduleValidator(),
		overrunLevels: make(map[int64]scheduling.OverrunLevel),
	}
}

// WithRenderer wires a display surface into the rescan path
func (c *Coordinator) WithRenderer(r Renderer) *Coordinator {
	c.renderer = r
	return c
}

// Start begins timing a task. It fails with a ConflictError when another
// task's timer is active; callers must issue an explicit Switch instead of
// silently pausing the running task.
func (c *Coordinator) Start(ctx context.Context, taskID int64) (*domain.TimerRecord, error) {
	if err := c.validator.ValidateTaskID(taskID); err != nil {
		return nil, err
	}
	if _, err := c.tasks.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	view, err := LoadView(ctx, c.store)
	if err != nil {
		return nil, err
	}
	if view.Active != nil {
		if view.Active.TaskID == taskID {
			return nil, errors.NewInvalidStateError("start", taskID, "timer is already running")
		}
		return nil, errors.NewConflictError(view.Active.TaskID, taskID)
	}

	record, err := c.startRecord(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, statestore.ActiveTimerKey, statestore.EncodeActiveTimer(taskID)); err != nil {
		return nil, err
	}

	c.logger.Info("timer started", zap.Int64("task_id", taskID))
	return record, nil
}

// Switch atomically pauses the source timer and starts the destination.
// As observed by this context the transfer is a single transition; other
// contexts converge within one poll interval.
func (c *Coordinator) Switch(ctx context.Context, fromTaskID, toTaskID int64) (*domain.TimerRecord, error) {
	if err := c.validator.ValidateTaskID(fromTaskID); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateTaskID(toTaskID); err != nil {
		return nil, err
	}
	if fromTaskID == toTaskID {
		return nil, errors.NewInvalidStateError("switch", toTaskID, "source and destination are the same task")
	}
	if _, err := c.tasks.GetTask(ctx, toTaskID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	view, err := LoadView(ctx, c.store)
	if err != nil {
		return nil, err
	}
	if view.Active == nil || view.Active.TaskID != fromTaskID {
		return nil, errors.NewInvalidStateError("switch", fromTaskID, "timer is not active")
	}

	if err := c.pauseRecord(ctx, fromTaskID); err != nil {
		return nil, err
	}
	record, err := c.startRecord(ctx, toTaskID)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, statestore.ActiveTimerKey, statestore.EncodeActiveTimer(toTaskID)); err != nil {
		return nil, err
	}

	c.logger.Info("timer switched",
		zap.Int64("from_task_id", fromTaskID),
		zap.Int64("to_task_id", toTaskID))
	return record, nil
}

// Pause suspends the active timer for a task
func (c *Coordinator) Pause(ctx context.Context, taskID int64) error {
	if err := c.validator.ValidateTaskID(taskID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.pauseRecord(ctx, taskID); err != nil {
		return err
	}
	if err := c.clearActivePointer(ctx, taskID); err != nil {
		return err
	}

	c.logger.Info("timer paused", zap.Int64("task_id", taskID))
	return nil
}

// Resume restarts a paused or interrupted timer. It fails with an
// InvalidStateError when a different timer is already active.
func (c *Coordinator) Resume(ctx context.Context, taskID int64) (*domain.TimerRecord, error) {
	if err := c.validator.ValidateTaskID(taskID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	view, err := LoadView(ctx, c.store)
	if err != nil {
		return nil, err
	}
	if view.Active != nil && view.Active.TaskID != taskID {
		return nil, errors.NewInvalidStateError("resume", taskID,
			"another timer is already active")
	}

	var record domain.TimerRecord
	err = c.store.Update(ctx, statestore.TimerKey(taskID), func(current []byte, exists bool) ([]byte, error) {
		existing, ok := statestore.DecodeTimer(current)
		if !exists || !ok {
			return nil, errors.NewInvalidStateError("resume", taskID, "no timer record")
		}
		if !existing.Paused && !existing.Interrupted {
			return nil, errors.NewInvalidStateError("resume", taskID, "timer is not paused")
		}

		now := c.clock.Now()
		existing.Running = true
		existing.Paused = false
		existing.Interrupted = false
		existing.StartTime = &now
		existing.PausedAt = nil
		existing.LastUpdated = now
		record = existing
		return statestore.EncodeTimer(existing), nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.store.Put(ctx, statestore.ActiveTimerKey, statestore.EncodeActiveTimer(taskID)); err != nil {
		return nil, err
	}

	c.logger.Info("timer resumed", zap.Int64("task_id", taskID))
	return &record, nil
}

// Interrupt marks the running timer interrupted, freezes its accumulated
// time and cascades the injected gap through the rest of the day.
func (c *Coordinator) Interrupt(ctx context.Context, taskID int64, durationMinutes int) (scheduling.CascadeResult, error) {
	if err := c.validator.ValidateTaskID(taskID); err != nil {
		return scheduling.CascadeResult{}, err
	}
	if err := c.validator.ValidateInterruption(durationMinutes); err != nil {
		return scheduling.CascadeResult{}, err
	}

	task, err := c.tasks.GetTask(ctx, taskID)
	if err != nil {
		return scheduling.CascadeResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	err = c.store.Update(ctx, statestore.TimerKey(taskID), func(current []byte, exists bool) ([]byte, error) {
		existing, ok := statestore.DecodeTimer(current)
		if !exists || !ok {
			return nil, errors.NewInvalidStateError("interrupt", taskID, "no timer record")
		}
		if !existing.IsActive() {
			return nil, errors.NewInvalidStateError("interrupt", taskID, "timer is not active")
		}

		existing.AccumulatedSeconds += int(now.Sub(*existing.StartTime).Seconds())
		existing.Interrupted = true
		existing.StartTime = nil
		existing.PausedAt = &now
		existing.LastUpdated = now
		return statestore.EncodeTimer(existing), nil
	})
	if err != nil {
		return scheduling.CascadeResult{}, err
	}
	if err := c.clearActivePointer(ctx, taskID); err != nil {
		return scheduling.CascadeResult{}, err
	}

	c.logger.Info("timer interrupted",
		zap.Int64("task_id", taskID),
		zap.Int("gap_minutes", durationMinutes))

	// The interruption injects its duration as a gap at the anchor: the
	// anchor's new effective end is the interruption start plus the gap.
	date := now
	if task.DueDate != nil {
		date = *task.DueDate
	}
	anchorEnd := minuteOf(now) + domain.MinuteOfDay(durationMinutes)
	result, err := c.resched.Apply(ctx, date, taskID, anchorEnd)
	if err != nil {
		return result, err
	}
	c.reportOverflow(ctx, result)
	return result, nil
}

// Stop finalizes a timer: accumulated time is summed with the ticking
// segment, reported to the task store and the record removed. A failed
// write-back is surfaced but never rolls back local timer state.
func (c *Coordinator) Stop(ctx context.Context, taskID int64) (int, error) {
	if err := c.validator.ValidateTaskID(taskID); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	totalSeconds := 0
	err := c.store.Update(ctx, statestore.TimerKey(taskID), func(current []byte, exists bool) ([]byte, error) {
		existing, ok := statestore.DecodeTimer(current)
		if !exists || !ok {
			return nil, errors.NewInvalidStateError("stop", taskID, "no timer record")
		}

		totalSeconds = existing.AccumulatedSeconds
		if existing.IsActive() && existing.StartTime != nil {
			totalSeconds += int(now.Sub(*existing.StartTime).Seconds())
		}
		// Returning nil removes the record; Stopped is terminal.
		return nil, nil
	})
	if err != nil {
		return 0, err
	}
	if err := c.clearActivePointer(ctx, taskID); err != nil {
		return 0, err
	}
	delete(c.overrunLevels, taskID)

	minutes := (totalSeconds + 30) / 60
	if writeErr := c.tasks.RecordTimeSpent(ctx, taskID, minutes); writeErr != nil {
		c.logger.Warn("time spent write-back failed; local state kept",
			zap.Int64("task_id", taskID), zap.Error(writeErr))
		c.dispatch(ctx, domain.AlertRecord{
			Type:     domain.AlertStoreWriteFailed,
			Priority: domain.AlertLow,
			Message:  "Could not persist time spent; it will be lost when this session ends.",
			TaskID:   taskID,
		})
	}

	c.logger.Info("timer stopped",
		zap.Int64("task_id", taskID),
		zap.Int("minutes", minutes))
	return minutes, nil
}

// Active returns the currently active timer, if any, derived fresh from
// the store
func (c *Coordinator) Active(ctx context.Context) (*domain.TimerRecord, error) {
	view, err := LoadView(ctx, c.store)
	if err != nil {
		return nil, err
	}
	return view.Active, nil
}

// Rescan re-derives the timer view, settles the store back onto a single
// active record, repairs the active pointer, renders the state and checks
// the active task for overruns. The sync loop calls this every poll
// interval and on change notifications.
func (c *Coordinator) Rescan(ctx context.Context) error {
	view, err := LoadView(ctx, c.store)
	if err != nil {
		return err
	}

	c.mu.Lock()
	view, err = c.settle(ctx, view)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if view.Active == nil {
		if err := c.store.Delete(ctx, statestore.ActiveTimerKey); err != nil {
			return err
		}
	} else {
		if err := c.store.Put(ctx, statestore.ActiveTimerKey, statestore.EncodeActiveTimer(view.Active.TaskID)); err != nil {
			return err
		}
		if c.renderer != nil {
			c.renderer.ShowTimerState(*view.Active)
		}
		if err := c.checkOverrun(ctx, *view.Active); err != nil {
			return err
		}
	}
	return nil
}

// settle repairs the persisted records after a cross-context race or a
// task deletion. Records whose task no longer exists are dropped. When more
// than one record claims to be active the derived winner keeps running and
// every loser is demoted to paused with its ticking segment folded in, so
// the loser's clock stops instead of accruing silently. Caller holds c.mu.
func (c *Coordinator) settle(ctx context.Context, view View) (View, error) {
	records := make([]domain.TimerRecord, 0, len(view.Records))
	for _, record := range view.Records {
		if _, err := c.tasks.GetTask(ctx, record.TaskID); err != nil {
			if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
				return View{}, err
			}
			if err := c.store.Delete(ctx, statestore.TimerKey(record.TaskID)); err != nil {
				return View{}, err
			}
			delete(c.overrunLevels, record.TaskID)
			c.logger.Info("dropped timer record for deleted task",
				zap.Int64("task_id", record.TaskID))
			continue
		}

		if record.IsActive() && view.Active != nil && record.TaskID != view.Active.TaskID {
			err := c.pauseRecord(ctx, record.TaskID)
			if err != nil && !errors.IsErrorType(err, errors.ErrorTypeInvalidState) {
				return View{}, err
			}
			c.logger.Warn("demoted losing active timer",
				zap.Int64("task_id", record.TaskID),
				zap.Int64("winner_task_id", view.Active.TaskID))
			continue
		}

		records = append(records, record)
	}
	return DeriveView(records), nil
}

// Clear removes a task's timer record without recording time spent. Task
// deletion goes through this so a dead record cannot block later starts.
func (c *Coordinator) Clear(ctx context.Context, taskID int64) error {
	if err := c.validator.ValidateTaskID(taskID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, statestore.TimerKey(taskID)); err != nil {
		return err
	}
	if err := c.clearActivePointer(ctx, taskID); err != nil {
		return err
	}
	delete(c.overrunLevels, taskID)

	c.logger.Info("timer cleared", zap.Int64("task_id", taskID))
	return nil
}

// checkOverrun classifies the active timer against its estimate and
// escalates: a soft warning at the configured ratio, a hard overrun with a
// cascade at 100%.
func (c *Coordinator) checkOverrun(ctx context.Context, record domain.TimerRecord) error {
	task, err := c.tasks.GetTask(ctx, record.TaskID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil
		}
		return err
	}

	now := c.clock.Now()
	level := scheduling.ClassifyOverrun(record.Elapsed(now), task.EstimateMinutes, c.cfg.Scheduling.OverrunWarnRatio)

	c.mu.Lock()
	previous := c.overrunLevels[record.TaskID]
	c.overrunLevels[record.TaskID] = level
	c.mu.Unlock()

	if level <= previous {
		return nil
	}

	switch level {
	case scheduling.OverrunSoft:
		c.dispatch(ctx, domain.AlertRecord{
			Type:     domain.AlertOverrunWarning,
			Priority: domain.AlertMedium,
			Message:  "Task \"" + task.Title + "\" is approaching its estimate.",
			TaskID:   task.ID,
		})
	case scheduling.OverrunHard:
		c.dispatch(ctx, domain.AlertRecord{
			Type:     domain.AlertOverrunExceeded,
			Priority: domain.AlertHigh,
			Message:  "Task \"" + task.Title + "\" has exceeded its estimate.",
			TaskID:   task.ID,
		})

		date := now
		if task.DueDate != nil {
			date = *task.DueDate
		}
		result, err := c.resched.Apply(ctx, date, task.ID, minuteOf(now))
		if err != nil {
			return err
		}
		c.reportOverflow(ctx, result)
	}
	return nil
}

// startRecord creates or restarts the timer record for a task
func (c *Coordinator) startRecord(ctx context.Context, taskID int64) (*domain.TimerRecord, error) {
	var record domain.TimerRecord
	err := c.store.Update(ctx, statestore.TimerKey(taskID), func(current []byte, exists bool) ([]byte, error) {
		now := c.clock.Now()
		existing, ok := statestore.DecodeTimer(current)
		if exists && ok {
			existing.Running = true
			existing.Paused = false
			existing.Interrupted = false
			existing.StartTime = &now
			existing.PausedAt = nil
			existing.LastUpdated = now
			record = existing
		} else {
			record = domain.NewTimerRecord(taskID, now)
		}
		return statestore.EncodeTimer(record), nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// pauseRecord folds the ticking segment into the accumulated total and
// marks the record paused
func (c *Coordinator) pauseRecord(ctx context.Context, taskID int64) error {
	return c.store.Update(ctx, statestore.TimerKey(taskID), func(current []byte, exists bool) ([]byte, error) {
		existing, ok := statestore.DecodeTimer(current)
		if !exists || !ok {
			return nil, errors.NewInvalidStateError("pause", taskID, "no timer record")
		}
		if !existing.IsActive() {
			return nil, errors.NewInvalidStateError("pause", taskID, "timer is not active")
		}

		now := c.clock.Now()
		existing.AccumulatedSeconds += int(now.Sub(*existing.StartTime).Seconds())
		existing.Paused = true
		existing.StartTime = nil
		existing.PausedAt = &now
		existing.LastUpdated = now
		return statestore.EncodeTimer(existing), nil
	})
}

// clearActivePointer removes the active pointer when it still names the
// given task. Another context may have already repointed it.
func (c *Coordinator) clearActivePointer(ctx context.Context, taskID int64) error {
	return c.store.Update(ctx, statestore.ActiveTimerKey, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, nil
		}
		if id, ok := statestore.DecodeActiveTimer(current); ok && id != taskID {
			return current, nil
		}
		return nil, nil
	})
}

func (c *Coordinator) reportOverflow(ctx context.Context, result scheduling.CascadeResult) {
	if len(result.Overflow) == 0 {
		return
	}
	c.dispatch(ctx, domain.AlertRecord{
		Type:      domain.AlertScheduleOverflow,
		Priority:  domain.AlertHigh,
		Message:   "Some tasks no longer fit before the end of the day and need a decision.",
		ShowPopup: true,
	})
}

func (c *Coordinator) dispatch(ctx context.Context, alert domain.AlertRecord) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Dispatch(ctx, alert); err != nil {
		c.logger.Warn("alert dispatch failed", zap.Error(err))
	}
}

func minuteOf(t time.Time) domain.MinuteOfDay {
	return domain.MinuteOfDay(t.Hour()*60 + t.Minute())
}
