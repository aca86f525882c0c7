package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"habit-tracker/internal/config"
	"habit-tracker/internal/logging"
	"habit-tracker/internal/services"
)

// ServiceBuilder creates the habit service once flags have been applied to
// the configuration. The cleanup func runs after the command finishes.
type ServiceBuilder func(cfg *config.Config) (services.HabitService, func(), error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd          *cobra.Command
	build        ServiceBuilder
	config       *config.Config
	app          *App
	cleanup      func()
	errorHandler *ErrorHandler
	appOptions   []AppOption
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(build ServiceBuilder, cfg *config.Config, opts ...AppOption) *RootCommand {
	root := &RootCommand{
		build:        build,
		config:       cfg,
		errorHandler: NewErrorHandler(),
		appOptions:   opts,
	}

	root.cmd = &cobra.Command{
		Use:   "habit",
		Short: "A command-line habit tracker",
		Long: `habit keeps a list of daily habits and records, for each day, whether
each habit was done. Data lives in a local SQLite database.

EXAMPLES:
  habit add "Drink water"                  # Start tracking a new habit
  habit grid                               # Month-to-date grid of all habits
  habit done 1                             # Mark habit #1 done today
  habit undo 1 --date 2024-06-03           # Clear habit #1 for an earlier day this month
  habit toggle 2                           # Flip habit #2 for today
  habit delete 2                           # Delete habit #2 and its history

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  Config file: $HABIT_CONFIG or ~/.habit/config.yaml

  Environment:
    HABIT_DB_DIR                           Database directory (default: ~/.habit)
    HABIT_DB_FILENAME                      Database filename (default: habit.db)
    HABIT_DB_BUSY_TIMEOUT                  Wait for a locked database (default: 5s)
    HABIT_VALIDATION_TASK_NAME_MAX         Max habit name length (default: 255)
    HABIT_DISPLAY_COMPLETED_MARK           Grid mark for done days (default: ✓)
    HABIT_LOG_LEVEL                        debug, info, warn, error (default: info)
    HABIT_LOG_FILE                         Rotating JSON log file (default: stderr)
    HABIT_TELEMETRY_ENABLED                Export traces and metrics (default: false)
    HABIT_APP_TIMEOUT                      Per-command deadline (default: none)
    HABIT_ENV                              development, testing, production`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := root.getConfigFromFlags(); err != nil {
				return err
			}
			return root.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			root.teardown()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command, converting failures into user messages
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// operationAnnotation names what a subcommand does in error messages.
const operationAnnotation = "operation"

// ExecuteContext runs the root command with ctx as the parent context
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	cmd, err := r.cmd.ExecuteContextC(ctx)
	if err == nil {
		return nil
	}
	// PostRun is skipped when RunE fails
	r.teardown()

	logging.Debugf("command failed: code=%s error=%v\n", r.errorHandler.GetErrorCode(err), err)
	if hint := r.errorHandler.Hint(err); hint != "" {
		fmt.Fprintln(r.cmd.ErrOrStderr(), hint)
	}
	if cmd != nil {
		if operation := cmd.Annotations[operationAnnotation]; operation != "" {
			return r.errorHandler.Handle(operation, err)
		}
	}
	return r.errorHandler.HandleSimple(err)
}

func annotate(cmd *cobra.Command, operation string) *cobra.Command {
	cmd.Annotations = map[string]string{operationAnnotation: operation}
	return cmd
}

// Command exposes the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) setup(cmd *cobra.Command) error {
	service, cleanup, err := r.build(r.config)
	if err != nil {
		return err
	}
	r.cleanup = cleanup
	opts := append([]AppOption{WithOutput(cmd.OutOrStdout())}, r.appOptions...)
	r.app = NewAppWithConfig(service, r.config, opts...)
	return nil
}

func (r *RootCommand) teardown() {
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("db-dir", "", "Database directory (overrides HABIT_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides HABIT_DB_FILENAME)")
	flags.String("log-level", "", "Log level (overrides HABIT_LOG_LEVEL)")
	flags.String("log-file", "", "Log file (overrides HABIT_LOG_FILE)")
	flags.String("telemetry", "", "Telemetry exporter: none, stdout, otlp-http (overrides HABIT_TELEMETRY_EXPORTER)")
	flags.Duration("app-timeout", 0, "Per-command timeout (overrides HABIT_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable debug logging (overrides HABIT_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "Show the month-to-date grid",
		Long: `Show one row per day from the first of the month through today and one
column per habit. Done days carry the completed mark.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return r.run(cmd, NewGridCommand(r.app, format), nil)
		},
	}
	gridCmd.Flags().String("format", FormatText, "Output format: text or json")

	addCmd := &cobra.Command{
		Use:   "add [habit name]",
		Short: "Add a habit",
		Long:  "Add a habit. Names are trimmed and must be unique; case matters.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewAddCommand(r.app), args)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a habit and all its completions",
		Long: `Delete a habit and every completion recorded for it.

This operation cannot be undone. You will be asked to confirm unless --yes is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			return r.run(cmd, NewDeleteCommand(r.app, yes), args)
		},
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking")

	r.cmd.AddCommand(
		annotate(gridCmd, "show grid"),
		annotate(addCmd, "add habit"),
		annotate(deleteCmd, "delete habit"),
		annotate(r.completionCommand("done", "Mark a habit done", MarkDone), "mark habit done"),
		annotate(r.completionCommand("undo", "Mark a habit not done", MarkUndone), "mark habit not done"),
		annotate(r.completionCommand("toggle", "Flip a habit's state", MarkToggle), "toggle habit"),
	)
}

func (r *RootCommand) completionCommand(name, short string, mode MarkMode) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " [id]",
		Short: short,
		Long:  short + " for today, or for --date within the current month.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date, _ := cmd.Flags().GetString("date"); date != "" {
				args = append(args, date)
			}
			return r.run(cmd, NewCompletionCommand(r.app, mode), args)
		},
	}
	cmd.Flags().String("date", "", "Day to change, YYYY-MM-DD (default: today)")
	return cmd
}

// run executes a handler under the configured timeout
func (r *RootCommand) run(cmd *cobra.Command, handler Command, args []string) error {
	ctx, cancel := r.commandContext(cmd.Context())
	defer cancel()
	return handler.Execute(ctx, args)
}

// commandContext applies the application timeout; zero means no deadline
func (r *RootCommand) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout := r.getAppTimeout(); timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 0
}

// getConfigFromFlags updates the configuration with values from command-line flags
func (r *RootCommand) getConfigFromFlags() error {
	if r.config == nil {
		return fmt.Errorf("configuration not initialized")
	}

	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	if dbDir, _ := flags.GetString("db-dir"); dbDir != "" {
		overrides.DBDir = &dbDir
	}
	if dbFilename, _ := flags.GetString("db-filename"); dbFilename != "" {
		overrides.DBFilename = &dbFilename
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		overrides.LogLevel = &level
	}
	if file, _ := flags.GetString("log-file"); file != "" {
		overrides.LogFile = &file
	}
	if exporter, _ := flags.GetString("telemetry"); exporter != "" {
		overrides.TelemetryExporter = &exporter
	}
	if timeout, _ := flags.GetDuration("app-timeout"); timeout > 0 {
		overrides.Timeout = &timeout
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		overrides.Verbose = &verbose
	}

	config.ApplyOverrides(r.config, overrides)
	return r.config.Validate()
}
