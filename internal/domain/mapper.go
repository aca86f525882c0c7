package domain

import (
	"habit-tracker/internal/repository/sqlite"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a database Task.
func (m *TaskMapper) ToDatabase(domainTask Task) sqlite.Task {
	return sqlite.Task{
		ID:   domainTask.ID,
		Name: domainTask.Name,
	}
}

// FromDatabase converts a database Task to a domain Task.
func (m *TaskMapper) FromDatabase(dbTask sqlite.Task) Task {
	return Task{
		ID:   dbTask.ID,
		Name: dbTask.Name,
	}
}

// FromDatabaseSlice converts a slice of database Tasks to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(dbTasks []*sqlite.Task) []Task {
	domainTasks := make([]Task, len(dbTasks))
	for i, task := range dbTasks {
		domainTasks[i] = m.FromDatabase(*task)
	}
	return domainTasks
}

// CompletionMapper handles conversion between domain and database Completion models.
type CompletionMapper struct{}

// NewCompletionMapper creates a new CompletionMapper instance.
func NewCompletionMapper() *CompletionMapper {
	return &CompletionMapper{}
}

// ToDatabase converts a domain Completion to a database Completion, deriving the record id.
func (m *CompletionMapper) ToDatabase(c Completion) sqlite.Completion {
	return sqlite.Completion{
		ID:        c.ID(),
		TaskID:    c.TaskID,
		Date:      c.Date.String(),
		Completed: c.Completed,
	}
}

// FromDatabase converts a database Completion to a domain Completion.
func (m *CompletionMapper) FromDatabase(dbCompletion sqlite.Completion) Completion {
	return Completion{
		TaskID:    dbCompletion.TaskID,
		Date:      Date(dbCompletion.Date),
		Completed: dbCompletion.Completed,
	}
}

// FromDatabaseSlice converts a slice of database Completions to domain Completions.
func (m *CompletionMapper) FromDatabaseSlice(dbCompletions []*sqlite.Completion) []Completion {
	completions := make([]Completion, len(dbCompletions))
	for i, c := range dbCompletions {
		completions[i] = m.FromDatabase(*c)
	}
	return completions
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task       *TaskMapper
	Completion *CompletionMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:       NewTaskMapper(),
		Completion: NewCompletionMapper(),
	}
}
