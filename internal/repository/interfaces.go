package repository

import (
	"context"

	"habit-tracker/internal/domain"
)

// TaskRepository persists tasks. Deleting a task also deletes its completions.
type TaskRepository interface {
	ListAll(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	Add(ctx context.Context, name string) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteWithCount(ctx context.Context, id int64) (int64, error)
}

// CompletionRepository persists one completion per (task, date).
type CompletionRepository interface {
	Get(ctx context.Context, taskID int64, date domain.Date) (domain.Completion, bool, error)
	Set(ctx context.Context, taskID int64, date domain.Date, completed bool) error
	ListAll(ctx context.Context) ([]domain.Completion, error)
	ListByTask(ctx context.Context, taskID int64) ([]domain.Completion, error)
	ListByDate(ctx context.Context, date domain.Date) ([]domain.Completion, error)
}

// SnapshotLoader reads every task and completion in one transaction.
type SnapshotLoader interface {
	LoadAll(ctx context.Context) (*domain.Snapshot, error)
}
