package services

import (
	"context"
	"io"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/repository"
)

// HabitService is the entry point the view uses for every read and write.
// It owns the storage lifecycle and the last loaded snapshot.
type HabitService interface {
	Initialize(ctx context.Context) error
	LoadAll(ctx context.Context) (*domain.Snapshot, error)
	AddTask(ctx context.Context, name string) (int64, error)
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	SetCompletion(ctx context.Context, taskID int64, date domain.Date, completed bool) error
	ToggleCompletion(ctx context.Context, taskID int64, date domain.Date) (bool, error)
	GetCompletion(ctx context.Context, taskID int64, date domain.Date) (domain.Completion, bool, error)
	Snapshot() *domain.Snapshot
	State() State
	Close() error
}

// Backend is the storage the facade talks to once the store is open.
type Backend struct {
	Tasks       repository.TaskRepository
	Completions repository.CompletionRepository
	Loader      repository.SnapshotLoader
	Closer      io.Closer
}

// StoreOpener opens storage. It is called once per successful Initialize.
type StoreOpener func(ctx context.Context) (*Backend, error)
