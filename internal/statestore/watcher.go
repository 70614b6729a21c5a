package statestore

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Handler receives the key and new value of a changed entry. A nil value
// means the key was removed.
type Handler func(key string, value []byte)

type subscription struct {
	prefix  string
	handler Handler
}

// Watcher turns the shared store into a small pub/sub surface. The storage
// medium has no native cross-context notify primitive, so subscriptions are
// served by polling: each tick diffs the watched key space against the last
// observed snapshot and invokes handlers for changes. Publish delivers to
// local subscribers immediately; other contexts pick the write up on their
// next poll.
type Watcher struct {
	store    Store
	clock    clockwork.Clock
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	subs []subscription
	seen map[string][]byte

	kickCh chan struct{}
	stopCh chan struct{}
	once   sync.Once
}

// NewWatcher creates a polling watcher over the given store
func NewWatcher(store Store, clock clockwork.Clock, interval time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		store:    store,
		clock:    clock,
		interval: interval,
		logger:   logger,
		seen:     make(map[string][]byte),
		kickCh:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Subscribe registers a handler for every change under the given key prefix
func (w *Watcher) Subscribe(prefix string, handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = append(w.subs, subscription{prefix: prefix, handler: handler})
}

// Publish writes the value and notifies local subscribers without waiting
// for the next poll
func (w *Watcher) Publish(ctx context.Context, key string, value []byte) error {
	if err := w.store.Put(ctx, key, value); err != nil {
		return err
	}
	w.notify(key, value)
	w.Kick()
	return nil
}

// Kick requests an immediate rescan, e.g. after an asynchronous change
// notification from the storage medium
func (w *Watcher) Kick() {
	select {
	case w.kickCh <- struct{}{}:
	default:
	}
}

// Run polls until Stop is called or the context is cancelled
func (w *Watcher) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan(ctx)
	for {
		select {
		case <-ticker.Chan():
			w.scan(ctx)
		case <-w.kickCh:
			w.scan(ctx)
		case <-w.stopCh:
			w.logger.Debug("state watcher stopped")
			return
		case <-ctx.Done():
			w.logger.Debug("state watcher context cancelled")
			return
		}
	}
}

// Stop terminates the polling loop
func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.stopCh) })
}

// scan diffs all watched prefixes against the previous snapshot
func (w *Watcher) scan(ctx context.Context) {
	w.mu.Lock()
	prefixes := make([]string, 0, len(w.subs))
	for _, sub := range w.subs {
		prefixes = append(prefixes, sub.prefix)
	}
	w.mu.Unlock()

	current := make(map[string][]byte)
	for _, prefix := range dedupPrefixes(prefixes) {
		keys, err := w.store.Keys(ctx, prefix)
		if err != nil {
			w.logger.Warn("state watcher scan failed", zap.String("prefix", prefix), zap.Error(err))
			return
		}
		for _, key := range keys {
			value, exists, err := w.store.Get(ctx, key)
			if err != nil || !exists {
				continue
			}
			current[key] = value
		}
	}

	w.mu.Lock()
	previous := w.seen
	w.seen = current
	w.mu.Unlock()

	for key, value := range current {
		if old, ok := previous[key]; !ok || !bytes.Equal(old, value) {
			w.notify(key, value)
		}
	}
	for key := range previous {
		if _, ok := current[key]; !ok {
			w.notify(key, nil)
		}
	}
}

func (w *Watcher) notify(key string, value []byte) {
	w.mu.Lock()
	subs := make([]subscription, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	for _, sub := range subs {
		if strings.HasPrefix(key, sub.prefix) {
			sub.handler(key, value)
		}
	}
}

func dedupPrefixes(prefixes []string) []string {
	seen := make(map[string]bool, len(prefixes))
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
