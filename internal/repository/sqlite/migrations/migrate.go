package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
)

// UpFunc applies a single schema change inside the migration's transaction.
type UpFunc func(ctx context.Context, tx *sql.Tx) error

// Migration represents a versioned schema change
type Migration struct {
	Version int
	Name    string
	Up      UpFunc
}

var (
	registryMu sync.Mutex
	registry   = map[int]Migration{}
)

// Register adds a migration to the package registry. It is meant to be called
// from init functions; registering the same version twice panics.
func Register(version int, name string, up UpFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if version <= 0 {
		panic(fmt.Sprintf("migrations: invalid version %d", version))
	}
	if existing, ok := registry[version]; ok {
		panic(fmt.Sprintf("migrations: version %d registered twice (%s, %s)", version, existing.Name, name))
	}
	registry[version] = Migration{Version: version, Name: name, Up: up}
}

// All returns every registered migration ordered by version.
func All() []Migration {
	registryMu.Lock()
	defer registryMu.Unlock()

	migrations := make([]Migration, 0, len(registry))
	for _, m := range registry {
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations
}

// LatestVersion returns the highest registered version.
func LatestVersion() int {
	all := All()
	if len(all) == 0 {
		return 0
	}
	return all[len(all)-1].Version
}

// RunMigrations executes all pending migrations. Each migration and its ledger
// row commit together, so a failure leaves the schema at the previous version.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, All())
}

func run(ctx context.Context, db *sql.DB, migrations []Migration) error {
	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(ctx, db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

// CurrentVersion returns the highest applied version, or 0 for a fresh database.
func CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	if err := createMigrationsTable(ctx, db); err != nil {
		return 0, err
	}

	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// Pending returns the registered migrations not yet recorded in the ledger.
func Pending(ctx context.Context, db *sql.DB) ([]Migration, error) {
	if err := createMigrationsTable(ctx, db); err != nil {
		return nil, err
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, m := range All() {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := migration.Up(ctx, tx); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// execAll runs each statement in order, stopping at the first failure.
func execAll(ctx context.Context, tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}
