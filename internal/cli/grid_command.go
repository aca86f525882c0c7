package cli

import (
	"context"
	"strings"

	"habit-tracker/internal/errors"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// GridCommand shows the month-to-date grid
type GridCommand struct {
	app    *App
	format string
}

// NewGridCommand creates a new grid command handler
func NewGridCommand(app *App, format string) *GridCommand {
	return &GridCommand{app: app, format: format}
}

// Execute runs the grid command. A "format=json" argument overrides the
// command's default format.
func (c *GridCommand) Execute(ctx context.Context, args []string) error {
	format := c.format
	for _, arg := range args {
		value, ok := strings.CutPrefix(arg, "format=")
		if !ok {
			return errors.NewInvalidInputError("argument", arg, "expected format=text or format=json")
		}
		format = value
	}
	if format != FormatText && format != FormatJSON {
		return errors.NewInvalidInputError("format", format, "supported formats are text and json")
	}

	if err := c.app.ready(ctx); err != nil {
		return err
	}
	snapshot, err := c.app.service.LoadAll(ctx)
	if err != nil {
		return err
	}

	view := BuildGridView(snapshot, c.app.today())
	if format == FormatJSON {
		return RenderGridJSON(c.app.out, view)
	}
	return RenderGridText(c.app.out, view, TextStyle{
		CompletedMark: c.app.completedMark(),
		DateFormat:    c.app.dateFormat(),
	})
}
