package services

import (
	"context"
	"log/slog"

	"habit-tracker/internal/repository"
	"habit-tracker/internal/repository/sqlite"
)

// SQLiteOpener adapts a store constructor into a StoreOpener backed by the
// SQLite repositories.
func SQLiteOpener(open func(ctx context.Context) (*sqlite.Store, error), logger *slog.Logger) StoreOpener {
	return func(ctx context.Context) (*Backend, error) {
		store, err := open(ctx)
		if err != nil {
			return nil, err
		}
		repos := repository.New(store, logger)
		return &Backend{
			Tasks:       repos.Tasks,
			Completions: repos.Completions,
			Loader:      repos,
			Closer:      store,
		}, nil
	}
}
