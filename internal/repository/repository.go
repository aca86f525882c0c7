// Package repository implements the task and completion repositories on top
// of the transactional SQLite store.
package repository

import (
	"context"
	"log/slog"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/logging"
	"habit-tracker/internal/repository/sqlite"
)

// Repositories groups the repositories sharing one store.
type Repositories struct {
	Tasks       *SQLiteTaskRepository
	Completions *SQLiteCompletionRepository

	store  *sqlite.Store
	mapper *domain.Mapper
}

// New creates the repositories for store. A nil logger discards output.
func New(store *sqlite.Store, logger *slog.Logger) *Repositories {
	if logger == nil {
		logger = logging.Discard()
	}
	mapper := domain.NewMapper()
	return &Repositories{
		Tasks:       &SQLiteTaskRepository{store: store, mapper: mapper.Task, logger: logger.With("component", "task_repository")},
		Completions: &SQLiteCompletionRepository{store: store, mapper: mapper.Completion, logger: logger.With("component", "completion_repository")},
		store:       store,
		mapper:      mapper,
	}
}

// Store returns the underlying store.
func (r *Repositories) Store() *sqlite.Store {
	return r.store
}

// LoadAll reads tasks and completions in a single read-only transaction, so
// the snapshot never pairs tasks with completions from a different commit.
func (r *Repositories) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	return sqlite.Query(ctx, r.store, sqlite.AllCollections, func(tx *sqlite.Tx) (*domain.Snapshot, error) {
		tasks, err := tx.Tasks()
		if err != nil {
			return nil, err
		}
		completions, err := tx.Completions()
		if err != nil {
			return nil, err
		}

		taskRows, err := tasks.List(ctx)
		if err != nil {
			return nil, err
		}
		completionRows, err := completions.List(ctx)
		if err != nil {
			return nil, err
		}

		return domain.NewSnapshot(
			r.mapper.Task.FromDatabaseSlice(taskRows),
			r.mapper.Completion.FromDatabaseSlice(completionRows),
		), nil
	})
}
