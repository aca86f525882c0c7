package validation

import (
	"habit-tracker/internal/config"
)

const fieldName = "name"

// TaskValidator provides validation for task operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a task validator with default limits
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validator: NewValidator()}
}

// NewTaskValidatorWithConfig creates a task validator with configured limits
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateTaskName validates a task name for creation. The name is checked
// after trimming, the same form that is stored.
func (tv *TaskValidator) ValidateTaskName(name string) error {
	validationError := NewValidationError()
	trimmed := tv.validator.TrimAndValidateString(name)

	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError(fieldName)
		return validationError
	}

	if !tv.validator.IsValidTaskNameLength(trimmed) {
		min, max := tv.validator.TaskNameLimits()
		validationError.AddInvalidLengthError(fieldName, trimmed, min, max)
	}

	if !tv.validator.IsValidTaskName(trimmed) {
		validationError.AddInvalidCharacterError(fieldName, trimmed)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id int64) error {
	if !tv.validator.IsValidTaskID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("task_id", id, "must be a positive integer")
		return validationError
	}
	return nil
}

// GetValidTaskName returns the trimmed task name if it is valid
func (tv *TaskValidator) GetValidTaskName(name string) (string, error) {
	if err := tv.ValidateTaskName(name); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(name), nil
}
