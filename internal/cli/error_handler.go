package cli

import (
	"fmt"

	"task-planner/internal/errors"
	"task-planner/internal/validation"
)

// ErrorHandler translates engine errors into messages suitable for the
// command line
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle wraps an error with the failed operation and a user-facing message
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.Error())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, errors.GetUserMessage(err))
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// IsConflictError checks whether the error is a timer conflict that needs
// an explicit switch
func (eh *ErrorHandler) IsConflictError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeConflict)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsInvalidStateError checks if an error is a timer state error
func (eh *ErrorHandler) IsInvalidStateError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeInvalidState)
}
