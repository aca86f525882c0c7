package cli

import (
	"context"
	"fmt"
	"strings"
)

// AddCommand handles the add command
type AddCommand struct {
	app *App
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app}
}

// Execute adds a habit named by the joined arguments
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.ready(ctx); err != nil {
		return err
	}
	// the facade checks duplicates against the loaded snapshot
	if _, err := c.app.service.LoadAll(ctx); err != nil {
		return err
	}

	id, err := c.app.service.AddTask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	task, err := c.app.service.GetTask(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.app.out, "Added habit #%d: %s\n", task.ID, task.Name)
	return nil
}
