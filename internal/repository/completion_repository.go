package repository

import (
	"context"
	"fmt"
	"log/slog"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/errors"
	"habit-tracker/internal/repository/sqlite"
)

// SQLiteCompletionRepository implements CompletionRepository.
type SQLiteCompletionRepository struct {
	store  *sqlite.Store
	mapper *domain.CompletionMapper
	logger *slog.Logger
}

var _ CompletionRepository = (*SQLiteCompletionRepository)(nil)

var completionScope = []sqlite.Collection{sqlite.CollectionCompletions}

// Get returns the completion for the pair. A missing record is reported with
// found == false, not as an error.
func (r *SQLiteCompletionRepository) Get(ctx context.Context, taskID int64, date domain.Date) (domain.Completion, bool, error) {
	row, err := sqlite.Query(ctx, r.store, completionScope, func(tx *sqlite.Tx) (*sqlite.Completion, error) {
		completions, err := tx.Completions()
		if err != nil {
			return nil, err
		}
		return completions.Get(ctx, taskID, date.String())
	})
	if err != nil || row == nil {
		return domain.Completion{}, false, err
	}
	return r.mapper.FromDatabase(*row), true, nil
}

// Set creates or overwrites the completion for (taskID, date). The task must
// exist; the check and the upsert share one write transaction.
func (r *SQLiteCompletionRepository) Set(ctx context.Context, taskID int64, date domain.Date, completed bool) error {
	record := r.mapper.ToDatabase(domain.NewCompletion(taskID, date, completed))

	err := r.store.Write(ctx, sqlite.AllCollections, func(tx *sqlite.Tx) error {
		tasks, err := tx.Tasks()
		if err != nil {
			return err
		}
		completions, err := tx.Completions()
		if err != nil {
			return err
		}

		exists, err := tasks.Exists(ctx, taskID)
		if err != nil {
			return err
		}
		if !exists {
			return errors.NewNotFoundError("task", fmt.Sprintf("%d", taskID))
		}
		return completions.Upsert(ctx, &record)
	})
	if err != nil {
		return err
	}

	r.logger.Debug("completion set", "completion_id", record.ID, "completed", completed)
	return nil
}

// ListAll returns every completion ordered by task then date.
func (r *SQLiteCompletionRepository) ListAll(ctx context.Context) ([]domain.Completion, error) {
	return r.list(ctx, func(c *sqlite.CompletionCollection) ([]*sqlite.Completion, error) {
		return c.List(ctx)
	})
}

// ListByTask returns the completions of one task ordered by date.
func (r *SQLiteCompletionRepository) ListByTask(ctx context.Context, taskID int64) ([]domain.Completion, error) {
	return r.list(ctx, func(c *sqlite.CompletionCollection) ([]*sqlite.Completion, error) {
		return c.ListByTask(ctx, taskID)
	})
}

// ListByDate returns the completions recorded on one date.
func (r *SQLiteCompletionRepository) ListByDate(ctx context.Context, date domain.Date) ([]domain.Completion, error) {
	return r.list(ctx, func(c *sqlite.CompletionCollection) ([]*sqlite.Completion, error) {
		return c.ListByDate(ctx, date.String())
	})
}

func (r *SQLiteCompletionRepository) list(ctx context.Context, fn func(*sqlite.CompletionCollection) ([]*sqlite.Completion, error)) ([]domain.Completion, error) {
	return sqlite.Query(ctx, r.store, completionScope, func(tx *sqlite.Tx) ([]domain.Completion, error) {
		completions, err := tx.Completions()
		if err != nil {
			return nil, err
		}
		rows, err := fn(completions)
		if err != nil {
			return nil, err
		}
		return r.mapper.FromDatabaseSlice(rows), nil
	})
}
