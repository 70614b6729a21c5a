package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"task-planner/internal/config"
	"task-planner/internal/domain"
	"task-planner/internal/statestore"
)

// IdleDetector watches for stretches of the working day with no active
// timer. Each idle episode fires at most one alert; the detector re-arms
// when a timer becomes active again or the user acknowledges the nudge.
// Completed episodes are recorded to the day's idle log, which feeds the
// learned daily buffer estimate.
type IdleDetector struct {
	cfg      *config.Config
	store    statestore.Store
	notifier Notifier
	clock    clockwork.Clock
	logger   *zap.Logger

	mu        sync.Mutex
	idleSince *time.Time
	fired     bool

	stopCh chan struct{}
	once   sync.Once
}

// NewIdleDetector creates an idle detector
func NewIdleDetector(cfg *config.Config, store statestore.Store, notifier Notifier, clock clockwork.Clock, logger *zap.Logger) *IdleDetector {
	return &IdleDetector{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Run checks for idleness on a fixed interval until the context is
// canceled or Stop is called
func (d *IdleDetector) Run(ctx context.Context) {
	ticker := d.clock.NewTicker(d.cfg.Timer.IdleCheckInterval)
	defer ticker.Stop()

	d.logger.Info("idle detector started",
		zap.Duration("check_interval", d.cfg.Timer.IdleCheckInterval),
		zap.Duration("threshold", d.cfg.Timer.IdleThreshold))

	for {
		select {
		case <-ticker.Chan():
			if err := d.Check(ctx); err != nil {
				d.logger.Warn("idle check failed", zap.Error(err))
			}
		case <-d.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop terminates the detection loop
func (d *IdleDetector) Stop() {
	d.once.Do(func() { close(d.stopCh) })
}

// Check performs one idle evaluation. Outside working hours the episode
// state resets and nothing fires.
func (d *IdleDetector) Check(ctx context.Context) error {
	now := d.clock.Now()
	if !d.cfg.IsWithinWorkHours(now) {
		return d.closeEpisode(ctx, now)
	}

	view, err := LoadView(ctx, d.store)
	if err != nil {
		return err
	}
	if view.Active != nil {
		return d.closeEpisode(ctx, now)
	}

	d.mu.Lock()
	if d.idleSince == nil {
		start := now
		d.idleSince = &start
		d.fired = false
		d.mu.Unlock()
		return nil
	}
	shouldFire := !d.fired && now.Sub(*d.idleSince) >= d.cfg.Timer.IdleThreshold
	if shouldFire {
		d.fired = true
	}
	d.mu.Unlock()

	if !shouldFire {
		return nil
	}

	d.logger.Info("idle threshold reached", zap.Time("idle_since", *d.idleSince))
	return d.notifier.Dispatch(ctx, domain.AlertRecord{
		Type:     domain.AlertIdleDetected,
		Priority: domain.AlertMedium,
		Message:  "No timer has been running for a while. Start one?",
		DedupKey: "idle-detected",
	})
}

// Acknowledge dismisses the current nudge without starting a timer. The
// episode stays open so its idle time is still logged, but no further
// alert fires until a timer runs again.
func (d *IdleDetector) Acknowledge() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fired = true
}

// closeEpisode ends an open idle episode and records it to the day's log
func (d *IdleDetector) closeEpisode(ctx context.Context, now time.Time) error {
	d.mu.Lock()
	since := d.idleSince
	d.idleSince = nil
	d.fired = false
	d.mu.Unlock()

	if since == nil {
		return nil
	}

	period := domain.NewIdlePeriod(*since, now)
	if period.Minutes < 1 {
		return nil
	}

	key := statestore.IdleLogKey(domain.DateKey(*since))
	err := d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		periods := statestore.DecodeIdleLog(current)
		periods = append(periods, period)
		return statestore.EncodeIdleLog(periods), nil
	})
	if err != nil {
		return err
	}

	d.logger.Info("idle period recorded",
		zap.Time("start", period.Start),
		zap.Int("minutes", period.Minutes))
	return nil
}

// BufferEstimate averages logged idle minutes over the trailing days with
// any idle activity. Days with an empty log do not dilute the average. A
// zero return means no history exists yet.
func (d *IdleDetector) BufferEstimate(ctx context.Context, days int) (int, error) {
	now := d.clock.Now()
	total := 0
	counted := 0

	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -i)
		data, exists, err := d.store.Get(ctx, statestore.IdleLogKey(domain.DateKey(date)))
		if err != nil {
			return 0, err
		}
		if !exists {
			continue
		}
		periods := statestore.DecodeIdleLog(data)
		if len(periods) == 0 {
			continue
		}
		for _, p := range periods {
			total += p.Minutes
		}
		counted++
	}

	if counted == 0 {
		return 0, nil
	}
	return total / counted, nil
}
