package cli

import (
	"context"
	"fmt"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/errors"
	"habit-tracker/internal/validation"
)

// MarkMode selects what a completion command does to the cell.
type MarkMode int

const (
	MarkDone MarkMode = iota
	MarkUndone
	MarkToggle
)

// CompletionCommand handles done, undo and toggle
type CompletionCommand struct {
	app       *App
	mode      MarkMode
	validator *validation.CompletionValidator
}

// NewCompletionCommand creates a completion command handler for mode
func NewCompletionCommand(app *App, mode MarkMode) *CompletionCommand {
	return &CompletionCommand{app: app, mode: mode, validator: validation.NewCompletionValidator()}
}

// Execute marks the habit for the date, which defaults to today. Only days
// visible in the grid can be changed.
func (c *CompletionCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.NewInvalidInputError("arguments", args, "expected a task id and an optional date")
	}
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	today := c.app.today()
	date := today
	if len(args) == 2 {
		if date, err = c.validator.ValidateDate(args[1]); err != nil {
			return err
		}
	}
	if err := c.validator.ValidateDateInWindow(date, today.StartOfMonth(), today); err != nil {
		return err
	}

	if err := c.app.ready(ctx); err != nil {
		return err
	}
	// toggling flips the value in the loaded snapshot
	if _, err := c.app.service.LoadAll(ctx); err != nil {
		return err
	}

	completed, err := c.apply(ctx, id, date)
	if err != nil {
		return err
	}

	task, err := c.app.service.GetTask(ctx, id)
	if err != nil {
		return err
	}
	state := "not done"
	if completed {
		state = "done " + c.app.completedMark()
	}
	fmt.Fprintf(c.app.out, "%s on %s: %s\n", task.Name, date, state)
	return nil
}

func (c *CompletionCommand) apply(ctx context.Context, id int64, date domain.Date) (bool, error) {
	switch c.mode {
	case MarkToggle:
		return c.app.service.ToggleCompletion(ctx, id, date)
	case MarkUndone:
		return false, c.app.service.SetCompletion(ctx, id, date, false)
	default:
		return true, c.app.service.SetCompletion(ctx, id, date, true)
	}
}
