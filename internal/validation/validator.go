package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"habit-tracker/internal/config"
	"habit-tracker/internal/domain"
)

const (
	defaultTaskNameMinLength = 1
	defaultTaskNameMaxLength = 255
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a validator using default limits
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a validator whose limits come from cfg
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if the trimmed string has between min and max characters
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidTaskNameLength checks a task name against the configured limits
func (v *Validator) IsValidTaskNameLength(name string) bool {
	return v.IsValidStringLength(name, v.getTaskNameMinLength(), v.getTaskNameMaxLength())
}

// IsValidTaskName rejects invalid UTF-8 and control characters such as
// newlines and tabs. Any printable character is allowed.
func (v *Validator) IsValidTaskName(name string) bool {
	if !utf8.ValidString(name) {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// IsValidTaskID checks if a task ID is valid (positive)
func (v *Validator) IsValidTaskID(id int64) bool {
	return id > 0
}

// IsValidDate checks that s is a YYYY-MM-DD calendar date
func (v *Validator) IsValidDate(s string) bool {
	_, err := domain.ParseDate(s)
	return err == nil
}

// IsDateInRange checks that d lies within [start, end]
func (v *Validator) IsDateInRange(d, start, end domain.Date) bool {
	return !d.Before(start) && !end.Before(d)
}

// TrimAndValidateString trims surrounding whitespace
func (v *Validator) TrimAndValidateString(s string) string {
	return domain.NormalizeName(s)
}

// TaskNameLimits returns the configured minimum and maximum name length
func (v *Validator) TaskNameLimits() (int, int) {
	return v.getTaskNameMinLength(), v.getTaskNameMaxLength()
}

func (v *Validator) getTaskNameMinLength() int {
	if v.config != nil {
		return v.config.Validation.TaskNameMinLength
	}
	return defaultTaskNameMinLength
}

func (v *Validator) getTaskNameMaxLength() int {
	if v.config != nil {
		return v.config.Validation.TaskNameMaxLength
	}
	return defaultTaskNameMaxLength
}
