package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/errors"
	"habit-tracker/internal/repository/sqlite"
)

// SQLiteTaskRepository implements TaskRepository.
type SQLiteTaskRepository struct {
	store  *sqlite.Store
	mapper *domain.TaskMapper
	logger *slog.Logger
}

var _ TaskRepository = (*SQLiteTaskRepository)(nil)

// ListAll returns every task in insertion (id) order.
func (r *SQLiteTaskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	return sqlite.Query(ctx, r.store, []sqlite.Collection{sqlite.CollectionTasks}, func(tx *sqlite.Tx) ([]domain.Task, error) {
		tasks, err := tx.Tasks()
		if err != nil {
			return nil, err
		}
		rows, err := tasks.List(ctx)
		if err != nil {
			return nil, err
		}
		return r.mapper.FromDatabaseSlice(rows), nil
	})
}

// Get returns the task with the id or a not found error.
func (r *SQLiteTaskRepository) Get(ctx context.Context, id int64) (domain.Task, error) {
	return sqlite.Query(ctx, r.store, []sqlite.Collection{sqlite.CollectionTasks}, func(tx *sqlite.Tx) (domain.Task, error) {
		tasks, err := tx.Tasks()
		if err != nil {
			return domain.Task{}, err
		}
		row, err := tasks.Get(ctx, id)
		if err != nil {
			return domain.Task{}, err
		}
		return r.mapper.FromDatabase(*row), nil
	})
}

// Add inserts a task and returns its id. The name lookup and the insert run
// in one write transaction; the unique index on name catches anything the
// lookup could not see.
func (r *SQLiteTaskRepository) Add(ctx context.Context, name string) (int64, error) {
	task := domain.NewTask(name)
	if !task.IsValid() {
		return 0, errors.NewValidationError("task name is required", nil)
	}
	name = task.Name

	var id int64
	err := r.store.Write(ctx, []sqlite.Collection{sqlite.CollectionTasks}, func(tx *sqlite.Tx) error {
		tasks, err := tx.Tasks()
		if err != nil {
			return err
		}

		existing, err := tasks.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.NewDuplicateTaskError(name)
		}

		id, err = tasks.Insert(ctx, name)
		if stderrors.Is(err, sqlite.ErrConstraintViolation) {
			return errors.NewDuplicateTaskError(name)
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	r.logger.Debug("task added", "task_id", id, "name", name)
	return id, nil
}

// Delete removes the task and all of its completions atomically. Deleting an
// id that does not exist succeeds without changes.
func (r *SQLiteTaskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DeleteWithCount(ctx, id)
	return err
}

// DeleteWithCount is Delete that also reports how many completions were removed.
func (r *SQLiteTaskRepository) DeleteWithCount(ctx context.Context, id int64) (int64, error) {
	var removedTasks, removedCompletions int64
	err := r.store.Write(ctx, sqlite.AllCollections, func(tx *sqlite.Tx) error {
		tasks, err := tx.Tasks()
		if err != nil {
			return err
		}
		completions, err := tx.Completions()
		if err != nil {
			return err
		}

		removedCompletions, err = completions.DeleteByTask(ctx, id)
		if err != nil {
			return fmt.Errorf("delete completions of task %d: %w", id, err)
		}
		removedTasks, err = tasks.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete task %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Debug("task deleted", "task_id", id, "tasks_removed", removedTasks, "completions_removed", removedCompletions)
	return removedCompletions, nil
}
