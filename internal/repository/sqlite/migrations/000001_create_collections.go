package migrations

import (
	"context"
	"database/sql"
)

func init() {
	Register(1, "create_collections", Up_000001_create_collections)
}

// Up_000001_create_collections creates the tasks and completions collections.
// Completion ids are "<taskId>_<date>"; the composite unique index is what
// guarantees a single record per task and day.
func Up_000001_create_collections(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS completions (
			id TEXT PRIMARY KEY,
			task_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_task_id ON completions(task_id)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_date ON completions(date)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_completions_task_id_date ON completions(task_id, date)`,
	)
}
