package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/errors"
	"habit-tracker/internal/validation"
)

func TestAddCommand(t *testing.T) {
	app, out, _ := setupTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"add", "Drink", "water"}))
	assert.Equal(t, "Added habit #1: Drink water\n", out.String())

	err := app.Run(ctx, []string{"add", "  Drink water "})
	assert.True(t, errors.IsDuplicate(err))

	err = app.Run(ctx, []string{"add", " "})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
}

func TestDeleteCommand(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		answer      bool
		assumeYes   bool
		expectError bool
		output      string
		deleted     bool
	}{
		{name: "confirmed", interactive: true, answer: true, output: "Deleted habit: Read\n", deleted: true},
		{name: "declined", interactive: true, answer: false, output: "Delete cancelled.\n"},
		{name: "no terminal", interactive: false, expectError: true},
		{name: "assume yes", assumeYes: true, output: "Deleted habit: Read\n", deleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, out, confirmer := setupTestApp(t)
			confirmer.interactive = tt.interactive
			confirmer.answer = tt.answer
			ctx := context.Background()

			require.NoError(t, app.Run(ctx, []string{"add", "Read"}))
			require.NoError(t, app.service.SetCompletion(ctx, 1, domain.MustParseDate("2024-06-02"), true))
			out.Reset()

			err := NewDeleteCommand(app, tt.assumeYes).Execute(ctx, []string{"1"})
			if tt.expectError {
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.output, out.String())
			}

			if tt.interactive {
				assert.Equal(t, []string{`Delete "Read" and all its completions?`}, confirmer.asked)
			} else {
				assert.Empty(t, confirmer.asked)
			}

			snapshot, err := app.service.LoadAll(ctx)
			require.NoError(t, err)
			if tt.deleted {
				assert.Empty(t, snapshot.Tasks)
				assert.Empty(t, snapshot.Completions)
			} else {
				assert.Len(t, snapshot.Tasks, 1)
				assert.Len(t, snapshot.Completions, 1)
			}
		})
	}
}

func TestDeleteCommand_Arguments(t *testing.T) {
	app, _, _ := setupTestApp(t)
	ctx := context.Background()

	err := NewDeleteCommand(app, true).Execute(ctx, nil)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	err = NewDeleteCommand(app, true).Execute(ctx, []string{"x"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	err = NewDeleteCommand(app, true).Execute(ctx, []string{"9"})
	assert.True(t, errors.IsNotFound(err))
}

func TestCompletionCommand(t *testing.T) {
	app, out, _ := setupTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.Run(ctx, []string{"add", "Stretch"}))

	tests := []struct {
		name     string
		args     []string
		output   string
		date     string
		expected bool
	}{
		{"done defaults to today", []string{"done", "1"}, "Stretch on 2024-06-03: done ✓\n", "2024-06-03", true},
		{"done earlier this month", []string{"done", "1", "2024-06-01"}, "Stretch on 2024-06-01: done ✓\n", "2024-06-01", true},
		{"undo", []string{"undo", "1", "2024-06-01"}, "Stretch on 2024-06-01: not done\n", "2024-06-01", false},
		{"toggle on", []string{"toggle", "1", "2024-06-02"}, "Stretch on 2024-06-02: done ✓\n", "2024-06-02", true},
		{"toggle off", []string{"toggle", "1", "2024-06-02"}, "Stretch on 2024-06-02: not done\n", "2024-06-02", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			require.NoError(t, app.Run(ctx, tt.args))
			assert.Equal(t, tt.output, out.String())

			completion, found, err := app.service.GetCompletion(ctx, 1, domain.MustParseDate(tt.date))
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.expected, completion.Completed)
		})
	}
}

func TestCompletionCommand_Rejections(t *testing.T) {
	app, _, _ := setupTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.Run(ctx, []string{"add", "Stretch"}))

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, err error)
	}{
		{"future date", []string{"1", "2024-06-04"}, func(t *testing.T, err error) {
			assert.True(t, validation.IsValidationError(err))
		}},
		{"last month", []string{"1", "2024-05-31"}, func(t *testing.T, err error) {
			assert.True(t, validation.IsValidationError(err))
		}},
		{"bad date", []string{"1", "06/01/2024"}, func(t *testing.T, err error) {
			assert.True(t, validation.IsValidationError(err))
		}},
		{"missing task", []string{"7"}, func(t *testing.T, err error) {
			assert.True(t, errors.IsNotFound(err))
		}},
		{"no args", nil, func(t *testing.T, err error) {
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, NewCompletionCommand(app, MarkDone).Execute(ctx, tt.args))
		})
	}

	snapshot := app.service.Snapshot()
	assert.Empty(t, snapshot.Completions)
}

func TestGridCommand(t *testing.T) {
	app, out, _ := setupTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"grid"}))
	assert.Equal(t, "No habits yet. Add one with: habit add <name>\n", out.String())

	require.NoError(t, app.Run(ctx, []string{"add", "Exercise"}))
	require.NoError(t, app.Run(ctx, []string{"done", "1", "2024-06-02"}))
	out.Reset()

	require.NoError(t, app.Run(ctx, []string{"grid"}))
	text := out.String()
	assert.Contains(t, text, "Exercise #1")
	assert.Contains(t, text, "2024-06-01")
	assert.Contains(t, text, "2024-06-03")
	assert.Contains(t, text, "✓")
	assert.NotContains(t, text, "2024-06-04")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"grid", "format=json"}))
	assert.Contains(t, out.String(), `"name": "Exercise"`)

	err := app.Run(ctx, []string{"grid", "format=csv"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}
