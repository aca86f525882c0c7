package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func init() {
	Register(2, "unique_task_names", Up_000002_unique_task_names)
}

// Up_000002_unique_task_names backs the application-level duplicate check with
// a storage-level constraint so concurrent adds cannot both succeed.
//
// Stores written before the constraint may already hold the same name twice.
// Rows are never merged or dropped here; the migration fails naming the first
// clash and the schema stays at version 1.
func Up_000002_unique_task_names(ctx context.Context, tx *sql.Tx) error {
	var name string
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT name, COUNT(*) FROM tasks GROUP BY name HAVING COUNT(*) > 1 ORDER BY MIN(id) LIMIT 1`,
	).Scan(&name, &count)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("check duplicate task names: %w", err)
	default:
		return fmt.Errorf("task name %q is used by %d tasks; rename or delete the extras before upgrading", name, count)
	}

	return execAll(ctx, tx,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_name ON tasks(name)`,
	)
}
