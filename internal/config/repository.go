package config

import (
	"context"
	"os"

	"habit-tracker/internal/repository/sqlite"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment from HABIT_ENV.
// Unknown values select production.
func GetEnvironment() Environment {
	switch Environment(os.Getenv("HABIT_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

// StoreFactory opens stores based on environment and configuration
type StoreFactory struct {
	config *Config
	env    Environment
}

// NewStoreFactory creates a store factory for the given environment
func NewStoreFactory(config *Config, env Environment) *StoreFactory {
	return &StoreFactory{config: config, env: env}
}

// StorePath returns where the store lives:
// a local habit.db for development, memory for testing and the
// configured path for production.
func (sf *StoreFactory) StorePath() string {
	switch sf.env {
	case Development:
		return sf.config.Database.Filename
	case Testing:
		return sqlite.MemoryPath
	default:
		return sf.config.GetDatabasePath()
	}
}

// Open opens the store with the configured busy timeout and directory mode.
// Failures are initialization errors from the store itself.
func (sf *StoreFactory) Open(ctx context.Context, opts ...sqlite.Option) (*sqlite.Store, error) {
	base := []sqlite.Option{
		sqlite.WithBusyTimeout(sf.config.GetBusyTimeout()),
		sqlite.WithDirPermissions(os.FileMode(sf.config.Database.DirPermissions)),
	}
	return sqlite.Open(ctx, sf.StorePath(), append(base, opts...)...)
}
