package sqlite

import (
	"context"
	"fmt"
)

// TaskCollection runs statements against tasks inside a transaction.
type TaskCollection struct {
	tx *Tx
}

// List returns every task ordered by id.
func (c *TaskCollection) List(ctx context.Context) ([]*Task, error) {
	query := `SELECT id, name FROM tasks ORDER BY id ASC`
	return QueryMultiple(ctx, c.tx.tx, query, ScanTasks, "tasks")
}

// Get returns the task with the given id, or a not found error.
func (c *TaskCollection) Get(ctx context.Context, id int64) (*Task, error) {
	query := `SELECT id, name FROM tasks WHERE id = ?`
	return QuerySingle(ctx, c.tx.tx, query, ScanTask, "task", fmt.Sprintf("%d", id), id)
}

// FindByName returns the task with exactly this name, or nil.
func (c *TaskCollection) FindByName(ctx context.Context, name string) (*Task, error) {
	query := `SELECT id, name FROM tasks WHERE name = ?`
	tasks, err := QueryMultiple(ctx, c.tx.tx, query, ScanTasks, "tasks", name)
	if err != nil || len(tasks) == 0 {
		return nil, err
	}
	return tasks[0], nil
}

// Exists reports whether a task with the id exists.
func (c *TaskCollection) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := c.tx.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, HandleDatabaseError("check task", err)
	}
	return n > 0, nil
}

// Insert adds a task and returns the id the store assigned.
func (c *TaskCollection) Insert(ctx context.Context, name string) (int64, error) {
	if err := c.tx.requireWritable("insert task"); err != nil {
		return 0, err
	}
	query := `INSERT INTO tasks (name) VALUES (?)`
	return ExecuteWithLastInsertID(ctx, c.tx.tx, query, name)
}

// Delete removes the task and returns how many rows were deleted.
func (c *TaskCollection) Delete(ctx context.Context, id int64) (int64, error) {
	if err := c.tx.requireWritable("delete task"); err != nil {
		return 0, err
	}
	query := `DELETE FROM tasks WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, c.tx.tx, query, id)
}

// CompletionCollection runs statements against completions inside a transaction.
type CompletionCollection struct {
	tx *Tx
}

const completionColumns = `id, task_id, date, completed`

// Get returns the completion for the pair, or nil when none exists.
func (c *CompletionCollection) Get(ctx context.Context, taskID int64, date string) (*Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE task_id = ? AND date = ?`
	list, err := QueryMultiple(ctx, c.tx.tx, query, ScanCompletions, "completions", taskID, date)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// Upsert writes the completion, overwriting any existing record for the
// same task and date. The composite unique index is the conflict target.
func (c *CompletionCollection) Upsert(ctx context.Context, completion *Completion) error {
	if err := c.tx.requireWritable("upsert completion"); err != nil {
		return err
	}
	if err := ValidateDateForDB(completion.Date); err != nil {
		return err
	}
	completion.ID = CompletionID(completion.TaskID, completion.Date)

	query := `
	INSERT INTO completions (id, task_id, date, completed)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(task_id, date) DO UPDATE SET completed = excluded.completed`
	_, err := ExecuteWithRowsAffected(ctx, c.tx.tx, query,
		completion.ID, completion.TaskID, completion.Date, FormatBoolForDB(completion.Completed))
	return err
}

// List returns every completion ordered by task then date.
func (c *CompletionCollection) List(ctx context.Context) ([]*Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions ORDER BY task_id ASC, date ASC`
	return QueryMultiple(ctx, c.tx.tx, query, ScanCompletions, "completions")
}

// ListByTask returns the completions of one task ordered by date.
func (c *CompletionCollection) ListByTask(ctx context.Context, taskID int64) ([]*Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE task_id = ? ORDER BY date ASC`
	return QueryMultiple(ctx, c.tx.tx, query, ScanCompletions, "completions", taskID)
}

// ListByDate returns the completions recorded on one date ordered by task.
func (c *CompletionCollection) ListByDate(ctx context.Context, date string) ([]*Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE date = ? ORDER BY task_id ASC`
	return QueryMultiple(ctx, c.tx.tx, query, ScanCompletions, "completions", date)
}

// DeleteByTask removes every completion of the task and returns the count.
func (c *CompletionCollection) DeleteByTask(ctx context.Context, taskID int64) (int64, error) {
	if err := c.tx.requireWritable("delete completions"); err != nil {
		return 0, err
	}
	query := `DELETE FROM completions WHERE task_id = ?`
	return ExecuteWithRowsAffected(ctx, c.tx.tx, query, taskID)
}
