package domain

import (
	"strings"
)

// Task represents a habit the user tracks daily.
// This is a pure domain model without database-specific concerns.
type Task struct {
	ID   int64
	Name string
}

// NewTask creates a new unsaved Task with the given name, trimmed.
func NewTask(name string) Task {
	return Task{
		Name: NormalizeName(name),
	}
}

// IsValid checks if the task has valid data.
func (t Task) IsValid() bool {
	return t.Name != ""
}

// String returns the task name for display purposes.
func (t Task) String() string {
	return t.Name
}

// NormalizeName trims surrounding whitespace. Names are otherwise compared
// and stored byte for byte.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// HasTaskNamed reports whether tasks contains a task with exactly the given
// (already trimmed) name.
func HasTaskNamed(tasks []Task, name string) bool {
	for _, t := range tasks {
		if t.Name == name {
			return true
		}
	}
	return false
}

// FindTask returns the task with the given id.
func FindTask(tasks []Task, id int64) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
