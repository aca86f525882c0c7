package sqlite

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"habit-tracker/internal/errors"
	"habit-tracker/internal/repository/sqlite/migrations"
	"habit-tracker/internal/telemetry"
)

func openMemoryStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func openFileStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "habits.db")
	s, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTask(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	var id int64
	err := s.Write(context.Background(), []Collection{CollectionTasks}, func(tx *Tx) error {
		tasks, err := tx.Tasks()
		if err != nil {
			return err
		}
		id, err = tasks.Insert(context.Background(), name)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestOpen_FileStore(t *testing.T) {
	s := openFileStore(t)
	ctx := context.Background()

	_, err := os.Stat(s.Path())
	require.NoError(t, err, "database file should be created along with its directory")
	assert.False(t, s.IsMemory())

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrations.LatestVersion(), version)

	var mode string
	require.NoError(t, s.writer.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var queryOnly int
	require.NoError(t, s.reader.QueryRow("PRAGMA query_only").Scan(&queryOnly))
	assert.Equal(t, 1, queryOnly)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	insertTask(t, s, "Exercise")
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	tasks, err := Query(ctx, s, []Collection{CollectionTasks}, func(tx *Tx) ([]*Task, error) {
		c, err := tx.Tasks()
		if err != nil {
			return nil, err
		}
		return c.List(ctx)
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Exercise", tasks[0].Name)
}

func TestOpen_FailureIsInitializationError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s, err := Open(context.Background(), filepath.Join(blocker, "habits.db"))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInitialization))
}

func TestOpen_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o500))
	t.Cleanup(func() { os.Chmod(locked, 0o700) })

	_, err := Open(context.Background(), filepath.Join(locked, "data", "habits.db"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInitialization))

	initErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, errors.IsErrorType(initErr.Cause, errors.ErrorTypePermission))
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestOpen_LogsPendingMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.db")
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := Open(context.Background(), path, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"msg":"applying migration"`)))
	assert.Contains(t, buf.String(), `"name":"unique_task_names"`)
	assert.Contains(t, buf.String(), `"schema_version":2`)
	assert.NotContains(t, buf.String(), "could not read schema version")

	buf.Reset()
	s, err = Open(context.Background(), path, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NotContains(t, buf.String(), "applying migration", "nothing pending on reopen")
}

func TestInitError(t *testing.T) {
	t.Run("permission cause is kept as a permission error", func(t *testing.T) {
		refused := &os.PathError{Op: "mkdir", Path: "/srv/habits", Err: os.ErrPermission}
		err := initError("open store", "/srv/habits/habit.db", refused)

		assert.True(t, err.IsType(errors.ErrorTypeInitialization))
		permErr, ok := err.Cause.(*errors.AppError)
		require.True(t, ok)
		assert.True(t, permErr.IsType(errors.ErrorTypePermission))
		assert.Equal(t, "permission denied for open store on /srv/habits/habit.db", permErr.Message)
		assert.ErrorIs(t, err, os.ErrPermission)
	})

	t.Run("other causes are wrapped directly", func(t *testing.T) {
		cause := stderrors.New("file is not a database")
		err := initError("run migrations", "habit.db", cause)

		assert.True(t, err.IsType(errors.ErrorTypeInitialization))
		assert.Same(t, cause, err.Cause)
	})
}

func TestWrite_ExpiredDeadlineIsTimeout(t *testing.T) {
	s := openMemoryStore(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	called := false
	err := s.Write(ctx, AllCollections, func(tx *Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout))
	assert.False(t, errors.IsTransaction(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "The operation timed out. Please try again.", errors.GetUserMessage(err))
}

func TestWrite_DeadlineDuringTransactionIsTimeout(t *testing.T) {
	s := openFileStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Write(ctx, AllCollections, func(tx *Tx) error {
		<-ctx.Done()
		return stderrors.New("interrupted")
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout))

	count, err := Query(context.Background(), s, []Collection{CollectionTasks}, func(tx *Tx) (int, error) {
		tasks, err := tx.Tasks()
		if err != nil {
			return 0, err
		}
		rows, err := tasks.List(context.Background())
		return len(rows), err
	})
	require.NoError(t, err)
	assert.Zero(t, count, "store still usable after the timeout")
}

func TestWrite_CommitsOnSuccess(t *testing.T) {
	s := openMemoryStore(t)
	id := insertTask(t, s, "Exercise")
	assert.Equal(t, int64(1), id)

	second := insertTask(t, s, "Read")
	assert.Equal(t, int64(2), second, "ids are assigned monotonically")
}

func TestWrite_RollsBackOnError(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	boom := stderrors.New("boom")

	err := s.Write(ctx, AllCollections, func(tx *Tx) error {
		tasks, _ := tx.Tasks()
		id, err := tasks.Insert(ctx, "Exercise")
		require.NoError(t, err)

		completions, _ := tx.Completions()
		require.NoError(t, completions.Upsert(ctx, &Completion{TaskID: id, Date: "2024-01-15", Completed: true}))
		return boom
	})
	require.Error(t, err)
	assert.True(t, errors.IsTransaction(err))
	assert.ErrorIs(t, err, boom)

	err = s.Read(ctx, AllCollections, func(tx *Tx) error {
		tasks, _ := tx.Tasks()
		list, err := tasks.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		completions, _ := tx.Completions()
		all, err := completions.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		return nil
	})
	require.NoError(t, err)
}

func TestWrite_DomainErrorsPassThrough(t *testing.T) {
	s := openMemoryStore(t)
	notFound := errors.NewNotFoundError("task", "9")

	err := s.Write(context.Background(), AllCollections, func(tx *Tx) error {
		return notFound
	})
	assert.Same(t, notFound, err)
}

func TestRead_RejectsWrites(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()

	err := s.Read(ctx, AllCollections, func(tx *Tx) error {
		assert.Equal(t, ReadOnly, tx.Mode())
		tasks, err := tx.Tasks()
		require.NoError(t, err)
		_, err = tasks.Insert(ctx, "Exercise")
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadOnlyTransaction)
	assert.True(t, errors.IsTransaction(err))

	err = s.Read(ctx, AllCollections, func(tx *Tx) error {
		completions, _ := tx.Completions()
		return completions.Upsert(ctx, &Completion{TaskID: 1, Date: "2024-01-15"})
	})
	assert.ErrorIs(t, err, ErrReadOnlyTransaction)
}

func TestTx_CollectionScope(t *testing.T) {
	s := openMemoryStore(t)

	err := s.Read(context.Background(), []Collection{CollectionTasks}, func(tx *Tx) error {
		_, err := tx.Tasks()
		require.NoError(t, err)
		_, err = tx.Completions()
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCollectionNotInScope)
	assert.Contains(t, err.Error(), "completions")
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	err = s.Read(context.Background(), AllCollections, func(tx *Tx) error { return nil })
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.True(t, errors.IsTransaction(err))

	_, err = s.SchemaVersion(context.Background())
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestWrite_ConstraintViolation(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	insertTask(t, s, "Exercise")

	err := s.Write(ctx, []Collection{CollectionTasks}, func(tx *Tx) error {
		tasks, _ := tx.Tasks()
		_, err := tasks.Insert(ctx, "Exercise")
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.True(t, errors.IsTransaction(err))
}

func TestCompletionCollection_UpsertIsIdempotent(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	id := insertTask(t, s, "Exercise")

	upsert := func(completed bool) {
		err := s.Write(ctx, []Collection{CollectionCompletions}, func(tx *Tx) error {
			completions, _ := tx.Completions()
			return completions.Upsert(ctx, &Completion{TaskID: id, Date: "2024-01-15", Completed: completed})
		})
		require.NoError(t, err)
	}

	upsert(true)
	upsert(true)
	upsert(false)

	err := s.Read(ctx, []Collection{CollectionCompletions}, func(tx *Tx) error {
		completions, _ := tx.Completions()
		all, err := completions.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "1_2024-01-15", all[0].ID)
		assert.False(t, all[0].Completed)

		got, err := completions.Get(ctx, id, "2024-01-15")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.False(t, got.Completed)

		missing, err := completions.Get(ctx, id, "2024-01-16")
		require.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}

func TestCompletionCollection_RejectsBadDate(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()

	err := s.Write(ctx, []Collection{CollectionCompletions}, func(tx *Tx) error {
		completions, _ := tx.Completions()
		return completions.Upsert(ctx, &Completion{TaskID: 1, Date: "15/01/2024", Completed: true})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestCompletionCollection_Listing(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	a := insertTask(t, s, "A")
	b := insertTask(t, s, "B")

	err := s.Write(ctx, []Collection{CollectionCompletions}, func(tx *Tx) error {
		completions, _ := tx.Completions()
		for _, c := range []*Completion{
			{TaskID: b, Date: "2024-01-02", Completed: true},
			{TaskID: a, Date: "2024-01-02", Completed: true},
			{TaskID: a, Date: "2024-01-01", Completed: false},
		} {
			if err := completions.Upsert(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.Read(ctx, []Collection{CollectionCompletions}, func(tx *Tx) error {
		completions, _ := tx.Completions()

		all, err := completions.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"1_2024-01-01", "1_2024-01-02", "2_2024-01-02"}, []string{all[0].ID, all[1].ID, all[2].ID})

		byTask, err := completions.ListByTask(ctx, a)
		require.NoError(t, err)
		assert.Len(t, byTask, 2)

		byDate, err := completions.ListByDate(ctx, "2024-01-02")
		require.NoError(t, err)
		require.Len(t, byDate, 2)
		assert.Equal(t, a, byDate[0].TaskID)
		return nil
	})
	require.NoError(t, err)
}

func TestTaskCollection_Lookups(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	id := insertTask(t, s, "Exercise")

	err := s.Read(ctx, []Collection{CollectionTasks}, func(tx *Tx) error {
		tasks, _ := tx.Tasks()

		found, err := tasks.FindByName(ctx, "Exercise")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, id, found.ID)

		missing, err := tasks.FindByName(ctx, "exercise")
		require.NoError(t, err)
		assert.Nil(t, missing)

		exists, err := tasks.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = tasks.Get(ctx, 42)
		assert.True(t, errors.IsNotFound(err))
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ConcurrentReadsDuringWrites(t *testing.T) {
	s := openFileStore(t)
	ctx := context.Background()
	insertTask(t, s, "Exercise")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(day int) {
			defer wg.Done()
			errs <- s.Write(ctx, []Collection{CollectionCompletions}, func(tx *Tx) error {
				completions, _ := tx.Completions()
				return completions.Upsert(ctx, &Completion{TaskID: 1, Date: "2024-01-1" + string(rune('0'+day)), Completed: true})
			})
		}(i)
		go func() {
			defer wg.Done()
			errs <- s.Read(ctx, AllCollections, func(tx *Tx) error {
				completions, _ := tx.Completions()
				_, err := completions.List(ctx)
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestStore_RecordsTelemetry(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := telemetry.NewStoreMetrics(mp.Meter(telemetry.ScopeName))
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	s := openMemoryStore(t, WithMetrics(metrics), WithTracer(tp.Tracer(telemetry.ScopeName)))
	insertTask(t, s, "Exercise")
	require.NoError(t, s.Read(context.Background(), AllCollections, func(tx *Tx) error { return nil }))

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{"store.write", "store.read"}, names)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "habit.store.transactions" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), total)
}
