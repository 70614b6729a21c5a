package statestore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type changeRecorder struct {
	mu      sync.Mutex
	changes map[string][]byte
	removed []string
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{changes: make(map[string][]byte)}
}

func (r *changeRecorder) handle(key string, value []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if value == nil {
		r.removed = append(r.removed, key)
		return
	}
	r.changes[key] = value
}

func (r *changeRecorder) seen(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.changes[key]
	return ok
}

func (r *changeRecorder) removedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.removed))
	copy(out, r.removed)
	return out
}

func TestWatcher_PublishNotifiesLocalSubscribers(t *testing.T) {
	store := NewMemoryStore()
	clock := clockwork.NewFakeClock()
	watcher := NewWatcher(store, clock, 5*time.Second, zap.NewNop())

	recorder := newChangeRecorder()
	watcher.Subscribe(TimerKeyPrefix, recorder.handle)

	// Publish delivers locally without the poll loop running at all.
	err := watcher.Publish(context.Background(), TimerKey(1), []byte("v1"))
	require.NoError(t, err)

	assert.True(t, recorder.seen(TimerKey(1)))

	value, exists, err := store.Get(context.Background(), TimerKey(1))
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, []byte("v1"), value)
}

func TestWatcher_ScanDetectsChangesAndRemovals(t *testing.T) {
	store := NewMemoryStore()
	clock := clockwork.NewFakeClock()
	watcher := NewWatcher(store, clock, 5*time.Second, zap.NewNop())
	ctx := context.Background()

	recorder := newChangeRecorder()
	watcher.Subscribe(TimerKeyPrefix, recorder.handle)

	// Another context writes directly to the store.
	require.NoError(t, store.Put(ctx, TimerKey(2), []byte("external")))
	watcher.scan(ctx)
	assert.True(t, recorder.seen(TimerKey(2)))

	// An unchanged key does not re-notify.
	before := len(recorder.removedKeys())
	watcher.scan(ctx)
	assert.Equal(t, before, len(recorder.removedKeys()))

	// A removal notifies with a nil value.
	require.NoError(t, store.Delete(ctx, TimerKey(2)))
	watcher.scan(ctx)
	assert.Contains(t, recorder.removedKeys(), TimerKey(2))
}

func TestWatcher_IgnoresKeysOutsideSubscribedPrefix(t *testing.T) {
	store := NewMemoryStore()
	clock := clockwork.NewFakeClock()
	watcher := NewWatcher(store, clock, 5*time.Second, zap.NewNop())
	ctx := context.Background()

	recorder := newChangeRecorder()
	watcher.Subscribe(TimerKeyPrefix, recorder.handle)

	require.NoError(t, store.Put(ctx, DayOrderKey("2026-08-28"), []byte("order")))
	watcher.scan(ctx)

	assert.False(t, recorder.seen(DayOrderKey("2026-08-28")))
}

func TestWatcher_StopTerminatesRun(t *testing.T) {
	store := NewMemoryStore()
	clock := clockwork.NewFakeClock()
	watcher := NewWatcher(store, clock, 5*time.Second, zap.NewNop())

	done := make(chan struct{})
	go func() {
		watcher.Run(context.Background())
		close(done)
	}()

	watcher.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
