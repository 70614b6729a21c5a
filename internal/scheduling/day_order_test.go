package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/domain"
	"task-planner/internal/statestore"
)

func orderBookAt(now time.Time) (*OrderBook, *statestore.MemoryStore) {
	store := statestore.NewMemoryStore()
	return NewOrderBook(store, clockwork.NewFakeClockAt(now)), store
}

func TestOrderBook_GetUnorderedDayIsEmpty(t *testing.T) {
	book, _ := orderBookAt(workday())

	order, err := book.Get(context.Background(), "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", order.Date)
	assert.Empty(t, order.TaskIDs)
}

func TestOrderBook_ReorderRoundTrip(t *testing.T) {
	book, _ := orderBookAt(workday())
	ctx := context.Background()

	require.NoError(t, book.Reorder(ctx, "2026-08-28", []int64{5, 3, 8}))

	order, err := book.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 8}, order.TaskIDs)
}

func TestOrderBook_MalformedOrderReadsAsEmpty(t *testing.T) {
	book, store := orderBookAt(workday())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, statestore.DayOrderKey("2026-08-28"), []byte("{broken")))

	order, err := book.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Empty(t, order.TaskIDs)
}

func TestOrderBook_MoveTask(t *testing.T) {
	book, _ := orderBookAt(workday())
	ctx := context.Background()

	require.NoError(t, book.Reorder(ctx, "2026-08-28", []int64{5, 3, 8}))
	require.NoError(t, book.Reorder(ctx, "2026-08-29", []int64{2}))

	require.NoError(t, book.MoveTask(ctx, 3, "2026-08-28", "2026-08-29"))

	from, err := book.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 8}, from.TaskIDs)

	to, err := book.Get(ctx, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, to.TaskIDs)
}

func TestOrderBook_MoveTaskToUnorderedDay(t *testing.T) {
	book, _ := orderBookAt(workday())
	ctx := context.Background()

	require.NoError(t, book.Reorder(ctx, "2026-08-28", []int64{3}))
	require.NoError(t, book.MoveTask(ctx, 3, "2026-08-28", "2026-09-01"))

	to, err := book.Get(ctx, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, to.TaskIDs)
}

func TestOrderBook_SweepRemovesOldOrders(t *testing.T) {
	now := workday()
	book, store := orderBookAt(now)
	ctx := context.Background()

	old := domain.DateKey(now.AddDate(0, 0, -10))
	recent := domain.DateKey(now.AddDate(0, 0, -2))
	require.NoError(t, book.Reorder(ctx, old, []int64{1}))
	require.NoError(t, book.Reorder(ctx, recent, []int64{2}))
	require.NoError(t, store.Put(ctx, statestore.DayOrderKey("not-a-date"), []byte("{}")))

	require.NoError(t, book.Sweep(ctx))

	keys, err := store.Keys(ctx, statestore.DayOrderKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{statestore.DayOrderKey(recent)}, keys)
}

func TestSortTasksByOrder(t *testing.T) {
	day := workday()
	tasks := []*domain.TaskRef{
		scheduledTask(1, "Morning", day, 540, 30),
		scheduledTask(2, "Noon", day, 700, 30),
		scheduledTask(3, "Afternoon", day, 900, 30),
	}

	t.Run("should follow the manual order", func(t *testing.T) {
		order := domain.NewDayOrder(domain.DateKey(day), []int64{3, 1})
		sorted := SortTasksByOrder(tasks, order)

		assert.Equal(t, int64(3), sorted[0].ID)
		assert.Equal(t, int64(1), sorted[1].ID)
		// Unordered tasks follow, by start time.
		assert.Equal(t, int64(2), sorted[2].ID)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		order := domain.NewDayOrder(domain.DateKey(day), []int64{3, 1})
		once := SortTasksByOrder(tasks, order)
		twice := SortTasksByOrder(once, order)
		assert.Equal(t, once, twice)
	})

	t.Run("should fall back to start times with no manual order", func(t *testing.T) {
		order := domain.NewDayOrder(domain.DateKey(day), nil)
		sorted := SortTasksByOrder([]*domain.TaskRef{tasks[2], tasks[0], tasks[1]}, order)

		assert.Equal(t, int64(1), sorted[0].ID)
		assert.Equal(t, int64(2), sorted[1].ID)
		assert.Equal(t, int64(3), sorted[2].ID)
	})
}
