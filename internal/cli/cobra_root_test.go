package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/config"
	"habit-tracker/internal/repository/sqlite"
	"habit-tracker/internal/services"
)

// runRoot executes one invocation against a fresh root command, the way the
// binary runs once per process.
func runRoot(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	build := func(cfg *config.Config) (services.HabitService, func(), error) {
		factory := config.NewStoreFactory(cfg, config.Production)
		open := func(ctx context.Context) (*sqlite.Store, error) { return factory.Open(ctx) }
		service := services.NewHabitService(services.SQLiteOpener(open, nil))
		return service, func() { service.Close() }, nil
	}

	root := NewRootCommand(build, cfg, WithConfirmer(&fakeConfirmer{}))
	var out bytes.Buffer
	root.Command().SetOut(&out)
	root.Command().SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_EndToEnd(t *testing.T) {
	freezeTime(t)
	dir := t.TempDir()
	cfg := config.NewConfig()

	out, err := runRoot(t, cfg, "--db-dir", dir, "add", "Exercise")
	require.NoError(t, err)
	assert.Equal(t, "Added habit #1: Exercise\n", out)
	assert.Equal(t, dir, cfg.Database.Dir)

	_, err = runRoot(t, cfg, "add", "Read")
	require.NoError(t, err)

	out, err = runRoot(t, cfg, "done", "2", "--date", "2024-06-02")
	require.NoError(t, err)
	assert.Equal(t, "Read on 2024-06-02: done ✓\n", out)

	out, err = runRoot(t, cfg, "grid", "--format", "json")
	require.NoError(t, err)
	var view GridView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Tasks, 2)
	require.Len(t, view.Days, 3)
	assert.Equal(t, []bool{false, true}, view.Days[1].Completed)

	_, err = runRoot(t, cfg, "delete", "2")
	require.Error(t, err, "no terminal and no --yes")
	assert.Contains(t, err.Error(), "--yes")

	out, err = runRoot(t, cfg, "delete", "2", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Deleted habit: Read\n", out)

	_, err = runRoot(t, cfg, "add", "Exercise")
	require.Error(t, err)
	assert.Equal(t, "failed to add habit: This habit already exists!", err.Error())
}

func TestRootCommand_ErrorHints(t *testing.T) {
	freezeTime(t)
	cfg := config.NewConfig()
	cfg.Database.Dir = t.TempDir()

	tests := []struct {
		name    string
		args    []string
		message string
		hint    string
	}{
		{"unknown habit", []string{"done", "7"}, "failed to mark habit done: task not found: 7", "Run 'habit grid' to see habit ids.\n"},
		{"flag config", []string{"--log-level", "loud", "grid"}, "logging.level", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build := func(cfg *config.Config) (services.HabitService, func(), error) {
				factory := config.NewStoreFactory(cfg, config.Production)
				open := func(ctx context.Context) (*sqlite.Store, error) { return factory.Open(ctx) }
				service := services.NewHabitService(services.SQLiteOpener(open, nil))
				return service, func() { service.Close() }, nil
			}
			root := NewRootCommand(build, cfg)
			var stdout, stderr bytes.Buffer
			root.Command().SetOut(&stdout)
			root.Command().SetErr(&stderr)
			root.Command().SetArgs(tt.args)

			err := root.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, tt.hint, stderr.String())
		})
	}
}

func TestRootCommand_InvalidFlagConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Database.Dir = t.TempDir()

	_, err := runRoot(t, cfg, "--log-level", "loud", "grid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestRootCommand_CommandContext(t *testing.T) {
	cfg := config.NewConfig()
	root := NewRootCommand(nil, cfg)

	ctx, cancel := root.commandContext(context.Background())
	_, hasDeadline := ctx.Deadline()
	cancel()
	assert.False(t, hasDeadline, "zero timeout means no deadline")

	cfg.Application.Timeout = time.Minute
	ctx, cancel = root.commandContext(context.Background())
	_, hasDeadline = ctx.Deadline()
	cancel()
	assert.True(t, hasDeadline)
}
