package validation

import (
	"habit-tracker/internal/domain"
)

// CompletionValidator validates the inputs of completion commands
type CompletionValidator struct {
	validator *Validator
}

// NewCompletionValidator creates a completion validator
func NewCompletionValidator() *CompletionValidator {
	return &CompletionValidator{validator: NewValidator()}
}

// ValidateDate parses a YYYY-MM-DD date
func (cv *CompletionValidator) ValidateDate(s string) (domain.Date, error) {
	d, err := domain.ParseDate(s)
	if err != nil {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError("date", s, "YYYY-MM-DD")
		return "", validationError
	}
	return d, nil
}

// ValidateCompletion checks the task id and date of a completion
func (cv *CompletionValidator) ValidateCompletion(taskID int64, date domain.Date) error {
	validationError := NewValidationError()

	if !cv.validator.IsValidTaskID(taskID) {
		validationError.AddInvalidValueError("task_id", taskID, "must be a positive integer")
	}
	if !cv.validator.IsValidDate(date.String()) {
		validationError.AddInvalidFormatError("date", date.String(), "YYYY-MM-DD")
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ValidateDateInWindow checks that date lies within [start, end], the range
// of days a view lets the user edit
func (cv *CompletionValidator) ValidateDateInWindow(date, start, end domain.Date) error {
	if !cv.validator.IsDateInRange(date, start, end) {
		validationError := NewValidationError()
		validationError.AddInvalidRangeError("date", date.String(), "must be between "+start.String()+" and "+end.String())
		return validationError
	}
	return nil
}
