package cli

import (
	"context"
	"fmt"

	"habit-tracker/internal/errors"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app       *App
	assumeYes bool
}

// NewDeleteCommand creates a new delete command handler. With assumeYes the
// confirmation prompt is skipped.
func NewDeleteCommand(app *App, assumeYes bool) *DeleteCommand {
	return &DeleteCommand{app: app, assumeYes: assumeYes}
}

// Execute deletes a habit and all its completions after confirmation
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("arguments", args, "expected exactly one task id")
	}
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	if err := c.app.ready(ctx); err != nil {
		return err
	}
	task, err := c.app.service.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if !c.assumeYes {
		if !c.app.confirmer.Interactive() {
			return errors.NewInvalidInputError("confirmation", task.Name, "not a terminal; pass --yes to delete")
		}
		confirmed, err := c.app.confirmer.Confirm(fmt.Sprintf("Delete %q and all its completions?", task.Name))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(c.app.out, "Delete cancelled.")
			return nil
		}
	}

	if err := c.app.service.DeleteTask(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.app.out, "Deleted habit: %s\n", task.Name)
	return nil
}
