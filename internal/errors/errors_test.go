package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictError(t *testing.T) {
	err := NewConflictError(3, 5)

	assert.True(t, IsErrorType(err, ErrorTypeConflict))
	assert.Contains(t, err.Error(), "task 3")
	assert.Contains(t, err.Error(), "task 5")
	assert.Equal(t, "TIMER_CONFLICT", err.Code)
	assert.Equal(t, int64(3), err.Context["active_task_id"])
}

func TestInvalidStateError(t *testing.T) {
	err := NewInvalidStateError("resume", 7, "timer is not paused")

	assert.True(t, IsErrorType(err, ErrorTypeInvalidState))
	assert.Contains(t, err.Error(), "resume")
	assert.Contains(t, err.Error(), "timer is not paused")
}

func TestStoreUnavailableError_Unwraps(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewStoreUnavailableError("record time spent", cause)

	assert.True(t, IsErrorType(err, ErrorTypeStoreUnavailable))
	assert.ErrorIs(t, err, cause)
}

func TestAsAppError(t *testing.T) {
	appErr, ok := AsAppError(NewNotFoundError("task", "42"))
	require.True(t, ok)
	assert.Equal(t, ErrorTypeNotFound, appErr.Type)

	_, ok = AsAppError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestGetUserMessage(t *testing.T) {
	t.Run("should pass through actionable messages", func(t *testing.T) {
		err := NewConflictError(3, 5)
		assert.Equal(t, err.Message, GetUserMessage(err))
	})

	t.Run("should soften store failures", func(t *testing.T) {
		err := NewStoreUnavailableError("write", stderrors.New("locked"))
		assert.NotContains(t, GetUserMessage(err), "locked")
		assert.Contains(t, GetUserMessage(err), "unavailable")
	})

	t.Run("should fall back to the raw error", func(t *testing.T) {
		err := stderrors.New("plain failure")
		assert.Equal(t, "plain failure", GetUserMessage(err))
	})
}

func TestShouldLogError(t *testing.T) {
	assert.False(t, ShouldLogError(NewValidationError("bad input", nil)))
	assert.False(t, ShouldLogError(NewConflictError(1, 2)))
	assert.True(t, ShouldLogError(NewStoreUnavailableError("write", nil)))
	assert.True(t, ShouldLogError(stderrors.New("unknown")))
}
