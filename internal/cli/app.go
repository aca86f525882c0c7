package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"habit-tracker/internal/config"
	"habit-tracker/internal/domain"
	"habit-tracker/internal/errors"
	"habit-tracker/internal/services"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App represents the main CLI application
type App struct {
	service   services.HabitService
	config    *config.Config
	out       io.Writer
	confirmer Confirmer
	registry  *CommandRegistry
}

// AppOption configures an App.
type AppOption func(*App)

// WithOutput sets where command output is written.
func WithOutput(w io.Writer) AppOption {
	return func(a *App) { a.out = w }
}

// WithConfirmer sets how destructive commands ask for confirmation.
func WithConfirmer(c Confirmer) AppOption {
	return func(a *App) { a.confirmer = c }
}

// NewApp creates a new CLI application with default configuration
func NewApp(service services.HabitService, opts ...AppOption) *App {
	return NewAppWithConfig(service, config.NewConfig(), opts...)
}

// NewAppWithConfig creates a new CLI application instance with dependency injection
func NewAppWithConfig(service services.HabitService, cfg *config.Config, opts ...AppOption) *App {
	app := &App{
		service:   service,
		config:    cfg,
		out:       os.Stdout,
		confirmer: NewTerminalConfirmer(),
	}
	for _, opt := range opts {
		opt(app)
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// Run executes the command named by args[0]
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", a.registry.GetUsage())
	}
	return a.registry.Execute(ctx, args[0], args[1:])
}

// ready opens storage on first use; repeated calls are no-ops.
func (a *App) ready(ctx context.Context) error {
	return a.service.Initialize(ctx)
}

// today is the current calendar day in local time.
func (a *App) today() domain.Date {
	return domain.DateOf(timeNow())
}

func (a *App) completedMark() string {
	if a.config != nil && a.config.Display.CompletedMark != "" {
		return a.config.Display.CompletedMark
	}
	return "✓"
}

func (a *App) dateFormat() string {
	if a.config != nil {
		return a.config.Display.DateFormat
	}
	return ""
}

// parseTaskID parses a positive task id argument.
func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError("task id", arg, "must be a positive integer")
	}
	return id, nil
}
