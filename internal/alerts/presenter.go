// Package alerts dispatches deduplicated, priority-ordered alerts through
// the in-app presentation tiers and an optional system push channel.
package alerts

import (
	"time"

	"go.uber.org/zap"

	"task-planner/internal/domain"
)

// ToastStyle selects the visual treatment of a transient toast
type ToastStyle string

const (
	ToastDefault ToastStyle = "default"
	ToastError   ToastStyle = "error"
)

// Presenter is the rendering collaborator. Popup failures are non-fatal to
// the dispatcher; implementations should not block.
type Presenter interface {
	ShowToast(alert domain.AlertRecord, style ToastStyle, duration time.Duration)
	ShowPopup(alert domain.AlertRecord) error
	ShowBlockingPopup(alert domain.AlertRecord) error
	ShowTimerState(record domain.TimerRecord)
}

// LogPresenter renders alerts and timer state to the log. It stands in for
// a real UI surface in headless runs and tests.
type LogPresenter struct {
	logger *zap.Logger
}

// NewLogPresenter creates a log-backed presenter
func NewLogPresenter(logger *zap.Logger) *LogPresenter {
	return &LogPresenter{logger: logger}
}

// ShowToast logs a transient toast
func (p *LogPresenter) ShowToast(alert domain.AlertRecord, style ToastStyle, duration time.Duration) {
	p.logger.Info("toast",
		zap.String("type", string(alert.Type)),
		zap.String("priority", string(alert.Priority)),
		zap.String("style", string(style)),
		zap.Duration("duration", duration),
		zap.String("message", alert.Message))
}

// ShowPopup logs a non-blocking popup
func (p *LogPresenter) ShowPopup(alert domain.AlertRecord) error {
	p.logger.Info("popup",
		zap.String("type", string(alert.Type)),
		zap.String("message", alert.Message))
	return nil
}

// ShowBlockingPopup logs a blocking popup
func (p *LogPresenter) ShowBlockingPopup(alert domain.AlertRecord) error {
	p.logger.Warn("blocking popup",
		zap.String("type", string(alert.Type)),
		zap.String("message", alert.Message))
	return nil
}

// ShowTimerState logs the rendered timer state
func (p *LogPresenter) ShowTimerState(record domain.TimerRecord) {
	p.logger.Debug("timer state",
		zap.Int64("task_id", record.TaskID),
		zap.Bool("running", record.Running),
		zap.Bool("paused", record.Paused),
		zap.Bool("interrupted", record.Interrupted))
}
