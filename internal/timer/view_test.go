package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/domain"
	"task-planner/internal/statestore"
)

func TestDeriveView(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	t.Run("should find no active timer among paused records", func(t *testing.T) {
		paused := domain.NewTimerRecord(1, base)
		paused.Running = true
		paused.Paused = true
		paused.StartTime = nil

		view := DeriveView([]domain.TimerRecord{paused})
		assert.Nil(t, view.Active)
		assert.Len(t, view.Records, 1)
	})

	t.Run("should pick the single active timer", func(t *testing.T) {
		active := domain.NewTimerRecord(2, base)
		view := DeriveView([]domain.TimerRecord{active})
		require.NotNil(t, view.Active)
		assert.Equal(t, int64(2), view.Active.TaskID)
	})

	t.Run("should prefer the most recently updated of two actives", func(t *testing.T) {
		// Two records can both claim to be active inside the cross-context
		// staleness window.
		older := domain.NewTimerRecord(1, base)
		newer := domain.NewTimerRecord(2, base.Add(time.Minute))

		view := DeriveView([]domain.TimerRecord{older, newer})
		require.NotNil(t, view.Active)
		assert.Equal(t, int64(2), view.Active.TaskID)

		reversed := DeriveView([]domain.TimerRecord{newer, older})
		require.NotNil(t, reversed.Active)
		assert.Equal(t, int64(2), reversed.Active.TaskID)
	})
}

func TestLoadView_SkipsMalformedRecords(t *testing.T) {
	store := statestore.NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	good := domain.NewTimerRecord(1, base)
	require.NoError(t, store.Put(ctx, statestore.TimerKey(1), statestore.EncodeTimer(good)))
	require.NoError(t, store.Put(ctx, statestore.TimerKey(2), []byte("{corrupt")))

	view, err := LoadView(ctx, store)
	require.NoError(t, err)
	assert.Len(t, view.Records, 1)
	require.NotNil(t, view.Active)
	assert.Equal(t, int64(1), view.Active.TaskID)
}
