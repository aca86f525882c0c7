package cli

import (
	"context"

	"habit-tracker/internal/errors"
)

// Command represents a CLI command
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// CommandRegistry manages all available commands
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a new command registry with default options
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	registry.Register("grid", NewGridCommand(app, FormatText))
	registry.Register("add", NewAddCommand(app))
	registry.Register("delete", NewDeleteCommand(app, false))
	registry.Register("done", NewCompletionCommand(app, MarkDone))
	registry.Register("undo", NewCompletionCommand(app, MarkUndone))
	registry.Register("toggle", NewCompletionCommand(app, MarkToggle))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return command.Execute(ctx, args)
}

// GetUsage returns the usage string for the CLI
func (r *CommandRegistry) GetUsage() string {
	return "usage: habit grid [format=json] or habit add \"name\" or habit delete <id> or habit done|undo|toggle <id> [YYYY-MM-DD]"
}
