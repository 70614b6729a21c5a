package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"task-planner/internal/config"
	"task-planner/internal/domain"
	"task-planner/internal/errors"
)

// tier maps an alert priority onto its delivery channels
type tier struct {
	toastDuration time.Duration
	toastStyle    ToastStyle
	blockingPopup bool
	alwaysPush    bool
}

func tierFor(priority domain.AlertPriority) tier {
	switch priority {
	case domain.AlertCritical:
		return tier{toastDuration: 10 * time.Second, toastStyle: ToastError, blockingPopup: true, alwaysPush: true}
	case domain.AlertHigh:
		return tier{toastDuration: 8 * time.Second, toastStyle: ToastDefault, alwaysPush: true}
	case domain.AlertMedium:
		return tier{toastDuration: 6 * time.Second, toastStyle: ToastDefault}
	default:
		return tier{toastDuration: 4 * time.Second, toastStyle: ToastDefault}
	}
}

// Dispatcher accepts alert requests from any producer, suppresses
// duplicates and escalates by priority. The dedup ledger is per context;
// over-firing across contexts is tolerable, under-firing is not.
type Dispatcher struct {
	cfg       config.AlertsConfig
	presenter Presenter
	pusher    Pusher
	clock     clockwork.Clock
	logger    *zap.Logger

	mu        sync.Mutex
	queue     []*domain.AlertRecord
	delivered map[string]time.Time
	history   []historyEntry
	draining  bool
}

type historyEntry struct {
	key string
	at  time.Time
}

// NewDispatcher creates an alert dispatcher
func NewDispatcher(cfg config.AlertsConfig, presenter Presenter, pusher Pusher, clock clockwork.Clock, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		presenter: presenter,
		pusher:    pusher,
		clock:     clock,
		logger:    logger,
		delivered: make(map[string]time.Time),
	}
}

// Dispatch queues an alert and drains the queue synchronously. Duplicate
// alerts inside their minimum re-fire interval are dropped before entering
// the queue; once dequeued an alert is never reordered.
func (d *Dispatcher) Dispatch(ctx context.Context, alert domain.AlertRecord) error {
	if !alert.IsValid() {
		return errors.NewValidationError("invalid alert record", nil)
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.MinInterval <= 0 {
		alert.MinInterval = d.cfg.DefaultMinInterval
	}
	alert.CreatedAt = d.clock.Now()

	d.mu.Lock()
	d.pruneHistoryLocked()

	key := alert.DedupIdentity()
	if last, seen := d.delivered[key]; seen && d.clock.Now().Sub(last) < alert.MinInterval {
		d.mu.Unlock()
		d.logger.Debug("alert deduplicated", zap.String("dedup_key", key))
		return nil
	}

	if alert.Priority == domain.AlertCritical {
		d.queue = append([]*domain.AlertRecord{&alert}, d.queue...)
	} else {
		d.queue = append(d.queue, &alert)
	}

	if d.draining {
		// Another Dispatch call on this context is already draining; it
		// will pick this alert up.
		d.mu.Unlock()
		return nil
	}
	d.draining = true
	d.mu.Unlock()

	d.drain(ctx)
	return nil
}

// drain delivers queued alerts one at a time
func (d *Dispatcher) drain(ctx context.Context) {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		alert := d.queue[0]
		d.queue = d.queue[1:]

		key := alert.DedupIdentity()
		d.delivered[key] = d.clock.Now()
		d.history = append(d.history, historyEntry{key: key, at: d.clock.Now()})
		d.mu.Unlock()

		d.deliver(ctx, *alert)
	}
}

// deliver fires all channels for one alert
func (d *Dispatcher) deliver(ctx context.Context, alert domain.AlertRecord) {
	t := tierFor(alert.Priority)

	d.presenter.ShowToast(alert, t.toastStyle, t.toastDuration)

	// Popup failures never block the queue; the toast and push channels
	// already fired.
	if t.blockingPopup {
		if err := d.presenter.ShowBlockingPopup(alert); err != nil {
			d.logger.Warn("blocking popup unavailable",
				zap.String("alert_id", alert.ID), zap.Error(err))
		}
	} else if alert.ShowPopup {
		if err := d.presenter.ShowPopup(alert); err != nil {
			d.logger.Warn("popup unavailable",
				zap.String("alert_id", alert.ID), zap.Error(err))
		}
	}

	if d.pusher.Enabled() && (t.alwaysPush || alert.WantsPush) {
		if err := d.pusher.Notify(ctx, pushTitle(alert), alert.Message, string(alert.Type)); err != nil {
			d.logger.Warn("push delivery failed",
				zap.String("alert_id", alert.ID), zap.Error(err))
		}
	}
}

// pruneHistoryLocked drops ledger entries past the retention bounds.
// Called with the mutex held, lazily on each send.
func (d *Dispatcher) pruneHistoryLocked() {
	cutoff := d.clock.Now().Add(-d.cfg.HistoryTTL)

	keep := d.history[:0]
	for _, entry := range d.history {
		if entry.at.After(cutoff) {
			keep = append(keep, entry)
		} else if last, ok := d.delivered[entry.key]; ok && !last.After(entry.at) {
			delete(d.delivered, entry.key)
		}
	}
	d.history = keep

	for len(d.history) > d.cfg.HistoryLimit {
		oldest := d.history[0]
		d.history = d.history[1:]
		if last, ok := d.delivered[oldest.key]; ok && !last.After(oldest.at) {
			delete(d.delivered, oldest.key)
		}
	}
}

func pushTitle(alert domain.AlertRecord) string {
	switch alert.Type {
	case domain.AlertIdleDetected:
		return "Task Planner - Idle"
	case domain.AlertOverrunWarning, domain.AlertOverrunExceeded:
		return "Task Planner - Overrun"
	case domain.AlertScheduleConflict, domain.AlertScheduleOverflow:
		return "Task Planner - Schedule"
	case domain.AlertStoreWriteFailed:
		return "Task Planner - Storage"
	default:
		return "Task Planner"
	}
}
