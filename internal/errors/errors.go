package errors

import (
	"errors"
	"fmt"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewConflictError creates a conflict error for a timer start that collides
// with an already active timer. The caller must issue an explicit switch.
func NewConflictError(activeTaskID, requestedTaskID int64) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("timer for task %d is already active; switch explicitly to start task %d", activeTaskID, requestedTaskID),
		Code:    "TIMER_CONFLICT",
		Context: map[string]interface{}{
			"active_task_id":    activeTaskID,
			"requested_task_id": requestedTaskID,
		},
	}
}

// NewInvalidStateError creates an error for an operation that is invalid for
// the timer's current state (e.g. resuming a timer that is not paused).
func NewInvalidStateError(operation string, taskID int64, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidState,
		Message: fmt.Sprintf("cannot %s timer for task %d: %s", operation, taskID, reason),
		Code:    "INVALID_TIMER_STATE",
		Context: map[string]interface{}{
			"operation": operation,
			"task_id":   taskID,
			"reason":    reason,
		},
	}
}

// NewStoreUnavailableError creates an error for a failed collaborator write
func NewStoreUnavailableError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStoreUnavailable,
		Message: fmt.Sprintf("store operation failed: %s", operation),
		Code:    "STORE_UNAVAILABLE",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeConflict, ErrorTypeInvalidState:
			return appErr.Message
		case ErrorTypeStoreUnavailable:
			return "The task store is unavailable. Local timer state is kept; changes will not persist."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound:
			return false // These are user errors, not system errors
		case ErrorTypeConflict, ErrorTypeInvalidState:
			return false // Surfaced to the caller for an explicit decision
		case ErrorTypeStoreUnavailable:
			return true
		default:
			return true
		}
	}
	return true // Unknown errors should be logged
}
