package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"task-planner/internal/domain"
	"task-planner/internal/statestore"
)

// Day orders older than this are removed by the retention sweep.
const orderRetentionDays = 7

// OrderBook manages the manual per-day task ordering kept in the shared
// state store.
type OrderBook struct {
	store statestore.Store
	clock clockwork.Clock
}

// NewOrderBook creates a day order manager
func NewOrderBook(store statestore.Store, clock clockwork.Clock) *OrderBook {
	return &OrderBook{store: store, clock: clock}
}

// Get returns the manual order for a date. Days that were never ordered
// read as an empty order.
func (b *OrderBook) Get(ctx context.Context, date string) (domain.DayOrder, error) {
	data, exists, err := b.store.Get(ctx, statestore.DayOrderKey(date))
	if err != nil {
		return domain.DayOrder{}, err
	}
	if !exists {
		return domain.NewDayOrder(date, nil), nil
	}
	order, ok := statestore.DecodeDayOrder(data)
	if !ok {
		return domain.NewDayOrder(date, nil), nil
	}
	return order, nil
}

// Reorder replaces the manual order for a date
func (b *OrderBook) Reorder(ctx context.Context, date string, taskIDs []int64) error {
	order := domain.NewDayOrder(date, taskIDs)
	return b.store.Put(ctx, statestore.DayOrderKey(date), statestore.EncodeDayOrder(order))
}

// MoveTask moves a task from one day's order to another's, appending it at
// the destination. Each day's key is updated with its own read-modify-write.
func (b *OrderBook) MoveTask(ctx context.Context, taskID int64, fromDate, toDate string) error {
	err := b.store.Update(ctx, statestore.DayOrderKey(fromDate), func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return current, nil
		}
		order, ok := statestore.DecodeDayOrder(current)
		if !ok {
			return nil, nil
		}
		return statestore.EncodeDayOrder(order.Remove(taskID)), nil
	})
	if err != nil {
		return err
	}

	return b.store.Update(ctx, statestore.DayOrderKey(toDate), func(current []byte, exists bool) ([]byte, error) {
		order := domain.NewDayOrder(toDate, nil)
		if exists {
			if decoded, ok := statestore.DecodeDayOrder(current); ok {
				order = decoded
			}
		}
		return statestore.EncodeDayOrder(order.Append(taskID)), nil
	})
}

// Sweep removes day orders older than the retention window
func (b *OrderBook) Sweep(ctx context.Context) error {
	keys, err := b.store.Keys(ctx, statestore.DayOrderKeyPrefix)
	if err != nil {
		return err
	}

	cutoff := b.clock.Now().AddDate(0, 0, -orderRetentionDays)
	for _, key := range keys {
		date := key[len(statestore.DayOrderKeyPrefix):]
		parsed, err := time.ParseInLocation(domain.DateLayout, date, time.Local)
		if err != nil || parsed.Before(cutoff) {
			if err := b.store.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}

// SortTasksByOrder sorts tasks by the day's manual order. Tasks missing
// from the order follow the ordered ones, by start time then id, so
// re-sorting an unchanged day is idempotent.
func SortTasksByOrder(tasks []*domain.TaskRef, order domain.DayOrder) []*domain.TaskRef {
	sorted := make([]*domain.TaskRef, len(tasks))
	copy(sorted, tasks)

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := order.Position(sorted[i].ID), order.Position(sorted[j].ID)
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0:
			return true
		case pj >= 0:
			return false
		}
		si, sj := startMinute(sorted[i]), startMinute(sorted[j])
		if si != sj {
			return si < sj
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func startMinute(task *domain.TaskRef) domain.MinuteOfDay {
	if task.DueMinute != nil {
		return *task.DueMinute
	}
	// Unscheduled tasks sort to the end of the day.
	return domain.MinuteOfDay(24 * 60)
}
