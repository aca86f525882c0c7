package cli

import (
	"fmt"

	"habit-tracker/internal/errors"
	"habit-tracker/internal/validation"
)

// ErrorHandler turns command errors into messages for the user. Raw driver
// errors never reach the terminal; AppErrors map to their user message.
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, errors.GetUserMessage(err))
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("%s", validationErr.GetUserFriendlyMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("%s", errors.GetUserMessage(err))
	}

	return err
}

// Hint returns a follow-up suggestion for err, or "" when there is none.
func (eh *ErrorHandler) Hint(err error) string {
	switch {
	case eh.IsNotFoundError(err):
		return "Run 'habit grid' to see habit ids."
	case eh.IsDuplicateError(err):
		return "Names are case-sensitive; pick a different name."
	case eh.NeedsRefresh(err):
		return "Run 'habit grid' to reload the saved state."
	case eh.IsValidationError(err):
		return "Run 'habit <command> --help' for the expected arguments."
	}
	return ""
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsNotFound(err)
}

// IsDuplicateError checks if an error is a duplicate habit error
func (eh *ErrorHandler) IsDuplicateError(err error) bool {
	return errors.IsDuplicate(err)
}

// NeedsRefresh reports whether the user should reload and retry
func (eh *ErrorHandler) NeedsRefresh(err error) bool {
	return errors.IsTransaction(err)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}
