// Package statestore provides the shared key/value space visible to every
// open execution context of the application. It is the single source of
// truth for timer records, day ordering and idle logs; task content itself
// lives in the task store.
package statestore

import (
	"context"
	"fmt"
)

// Store key layout. Every write touches exactly one key and is a full
// read-modify-write of that key, never a blind overwrite of unrelated state.
const (
	TimerKeyPrefix   = "timer::"
	ActiveTimerKey   = "active_timer"
	DayOrderKeyPrefix = "day_order::"
	IdleLogKeyPrefix = "idle_log::"
)

// TimerKey returns the store key holding a task's timer record
func TimerKey(taskID int64) string {
	return fmt.Sprintf("%s%d", TimerKeyPrefix, taskID)
}

// DayOrderKey returns the store key holding a day's manual task order
func DayOrderKey(date string) string {
	return DayOrderKeyPrefix + date
}

// IdleLogKey returns the store key holding a day's idle periods
func IdleLogKey(date string) string {
	return IdleLogKeyPrefix + date
}

// UpdateFunc transforms the current value of a key. exists is false when the
// key is absent; returning nil bytes deletes the key.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Store is the multi-writer shared state medium. Implementations must make
// Update a read-modify-write of the freshest persisted value; readers must
// tolerate values written by another context between their own read and
// write.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
