package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration options for the habit tracker
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Validation  ValidationConfig  `yaml:"validation"`
	Display     DisplayConfig     `yaml:"display"`
	Logging     LoggingConfig     `yaml:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Application ApplicationConfig `yaml:"application"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `yaml:"dir" env:"HABIT_DB_DIR"`
	Filename       string        `yaml:"filename" env:"HABIT_DB_FILENAME"`
	BusyTimeout    time.Duration `yaml:"busy_timeout" env:"HABIT_DB_BUSY_TIMEOUT"`
	DirPermissions uint32        `yaml:"dir_permissions" env:"HABIT_DB_DIR_PERMISSIONS"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TaskNameMinLength int `yaml:"task_name_min_length" env:"HABIT_VALIDATION_TASK_NAME_MIN"`
	TaskNameMaxLength int `yaml:"task_name_max_length" env:"HABIT_VALIDATION_TASK_NAME_MAX"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	DateFormat    string `yaml:"date_format" env:"HABIT_DISPLAY_DATE_FORMAT"`
	CompletedMark string `yaml:"completed_mark" env:"HABIT_DISPLAY_COMPLETED_MARK"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level      string `yaml:"level" env:"HABIT_LOG_LEVEL"`
	File       string `yaml:"file" env:"HABIT_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"HABIT_LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"HABIT_LOG_MAX_BACKUPS"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" env:"HABIT_TELEMETRY_ENABLED"`
	Exporter    string  `yaml:"exporter" env:"HABIT_TELEMETRY_EXPORTER"`
	Endpoint    string  `yaml:"endpoint" env:"HABIT_TELEMETRY_ENDPOINT"`
	ServiceName string  `yaml:"service_name" env:"HABIT_TELEMETRY_SERVICE_NAME"`
	SampleRate  float64 `yaml:"sample_rate" env:"HABIT_TELEMETRY_SAMPLE_RATE"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	// Timeout bounds each command; zero means no deadline.
	Timeout time.Duration `yaml:"timeout" env:"HABIT_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"HABIT_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Dir:            filepath.Join(homeDir, ".habit"),
			Filename:       "habit.db",
			BusyTimeout:    5 * time.Second,
			DirPermissions: 0755,
		},
		Validation: ValidationConfig{
			TaskNameMinLength: 1,
			TaskNameMaxLength: 255,
		},
		Display: DisplayConfig{
			DateFormat:    "2006-01-02",
			CompletedMark: "✓",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Exporter:    "none",
			ServiceName: "habit-tracker",
			SampleRate:  1.0,
		},
		Application: ApplicationConfig{
			Timeout: 0,
			Verbose: false,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetBusyTimeout returns how long a writer waits for the database lock
func (c *Config) GetBusyTimeout() time.Duration {
	return c.Database.BusyTimeout
}

// LoadFromEnvironment loads configuration from HABIT_* environment variables.
// Unparseable values keep the current setting.
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if dir := os.Getenv("HABIT_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("HABIT_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if timeout := os.Getenv("HABIT_DB_BUSY_TIMEOUT"); timeout != "" {
		c.Database.BusyTimeout = ParseDurationWithFallback(timeout, c.Database.BusyTimeout)
	}
	if perms := os.Getenv("HABIT_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Validation configuration
	if minLen := os.Getenv("HABIT_VALIDATION_TASK_NAME_MIN"); minLen != "" {
		c.Validation.TaskNameMinLength = ParseIntWithFallback(minLen, c.Validation.TaskNameMinLength)
	}
	if maxLen := os.Getenv("HABIT_VALIDATION_TASK_NAME_MAX"); maxLen != "" {
		c.Validation.TaskNameMaxLength = ParseIntWithFallback(maxLen, c.Validation.TaskNameMaxLength)
	}

	// Display configuration
	if format := os.Getenv("HABIT_DISPLAY_DATE_FORMAT"); format != "" {
		c.Display.DateFormat = format
	}
	if mark := os.Getenv("HABIT_DISPLAY_COMPLETED_MARK"); mark != "" {
		c.Display.CompletedMark = mark
	}

	// Logging configuration
	if level := os.Getenv("HABIT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("HABIT_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if size := os.Getenv("HABIT_LOG_MAX_SIZE_MB"); size != "" {
		c.Logging.MaxSizeMB = ParseIntWithFallback(size, c.Logging.MaxSizeMB)
	}
	if backups := os.Getenv("HABIT_LOG_MAX_BACKUPS"); backups != "" {
		c.Logging.MaxBackups = ParseIntWithFallback(backups, c.Logging.MaxBackups)
	}

	// Telemetry configuration
	if enabled := os.Getenv("HABIT_TELEMETRY_ENABLED"); enabled != "" {
		c.Telemetry.Enabled = ParseBoolWithFallback(enabled, c.Telemetry.Enabled)
	}
	if exporter := os.Getenv("HABIT_TELEMETRY_EXPORTER"); exporter != "" {
		c.Telemetry.Exporter = exporter
	}
	if endpoint := os.Getenv("HABIT_TELEMETRY_ENDPOINT"); endpoint != "" {
		c.Telemetry.Endpoint = endpoint
	}
	if name := os.Getenv("HABIT_TELEMETRY_SERVICE_NAME"); name != "" {
		c.Telemetry.ServiceName = name
	}
	if rate := os.Getenv("HABIT_TELEMETRY_SAMPLE_RATE"); rate != "" {
		if f, err := strconv.ParseFloat(rate, 64); err == nil {
			c.Telemetry.SampleRate = f
		}
	}

	// Application configuration
	if timeout := os.Getenv("HABIT_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("HABIT_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}
	c.applyVerbose()

	return nil
}

// applyVerbose raises logging to debug when verbose output is on, whichever
// layer turned it on.
func (c *Config) applyVerbose() {
	if c.Application.Verbose {
		c.Logging.Level = "debug"
	}
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.BusyTimeout < 0 {
		return &ConfigError{Field: "database.busy_timeout", Message: "busy timeout cannot be negative"}
	}

	// Validate validation configuration
	if c.Validation.TaskNameMinLength < 1 {
		return &ConfigError{Field: "validation.task_name_min_length", Message: "task name minimum length must be at least 1"}
	}
	if c.Validation.TaskNameMaxLength < c.Validation.TaskNameMinLength {
		return &ConfigError{Field: "validation.task_name_max_length", Message: "task name maximum length must be greater than minimum length"}
	}

	// Validate display configuration
	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}
	if c.Display.CompletedMark == "" {
		return &ConfigError{Field: "display.completed_mark", Message: "completed mark cannot be empty"}
	}

	// Validate logging configuration
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "log level must be one of debug, info, warn, error"}
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.max_size_mb", Message: "log rotation limits cannot be negative"}
	}

	// Validate telemetry configuration
	switch c.Telemetry.Exporter {
	case "", "none", "stdout", "otlp-http":
	default:
		return &ConfigError{Field: "telemetry.exporter", Message: "exporter must be one of none, stdout, otlp-http"}
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return &ConfigError{Field: "telemetry.sample_rate", Message: "sample rate must be between 0 and 1"}
	}

	// Validate application configuration
	if c.Application.Timeout < 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout cannot be negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
