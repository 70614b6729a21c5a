package timer

import (
	"context"

	"task-planner/internal/domain"
	"task-planner/internal/statestore"
)

// View is the engine's current picture of all timers, derived from a store
// snapshot. Both the periodic rescan and on-demand queries go through the
// same derivation, so there is exactly one code path deciding which timer
// is active.
type View struct {
	Records []domain.TimerRecord
	Active  *domain.TimerRecord
}

// DeriveView computes the active timer from a snapshot of records. During
// the cross-context staleness window more than one record can claim to be
// active; the most recently updated one wins until the next rescan settles
// the store.
func DeriveView(records []domain.TimerRecord) View {
	view := View{Records: records}
	for i := range records {
		record := records[i]
		if !record.IsActive() {
			continue
		}
		if view.Active == nil || record.LastUpdated.After(view.Active.LastUpdated) {
			view.Active = &records[i]
		}
	}
	return view
}

// LoadView reads all timer records from the store and derives the view.
// Malformed records read as absent.
func LoadView(ctx context.Context, store statestore.Store) (View, error) {
	keys, err := store.Keys(ctx, statestore.TimerKeyPrefix)
	if err != nil {
		return View{}, err
	}

	records := make([]domain.TimerRecord, 0, len(keys))
	for _, key := range keys {
		data, exists, err := store.Get(ctx, key)
		if err != nil {
			return View{}, err
		}
		if !exists {
			continue
		}
		if record, ok := statestore.DecodeTimer(data); ok {
			records = append(records, record)
		}
	}

	return DeriveView(records), nil
}
