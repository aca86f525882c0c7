package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"habit-tracker/internal/errors"
	"habit-tracker/internal/repository/sqlite/migrations"
	"habit-tracker/internal/telemetry"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const (
	defaultBusyTimeout    = 5 * time.Second
	defaultDirPermissions = 0o755
)

// Sentinel causes carried by transaction errors.
var (
	ErrStoreClosed          = stderrors.New("store is closed")
	ErrCollectionNotInScope = stderrors.New("collection not in transaction scope")
	ErrReadOnlyTransaction  = stderrors.New("write attempted in read-only transaction")
	ErrConstraintViolation  = stderrors.New("constraint violation")
)

// Option configures a Store.
type Option func(*options)

type options struct {
	busyTimeout    time.Duration
	dirPermissions os.FileMode
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        *telemetry.StoreMetrics
}

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// WithDirPermissions sets the mode used when creating the database directory.
func WithDirPermissions(mode os.FileMode) Option {
	return func(o *options) { o.dirPermissions = mode }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTracer sets the tracer used for transaction spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithMetrics sets the transaction instruments.
func WithMetrics(m *telemetry.StoreMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// Store is the transactional home of the tasks and completions collections.
//
// File databases use two pools: a single writer connection that starts every
// transaction with BEGIN IMMEDIATE, and a query_only reader pool, so reads
// proceed concurrently under WAL while writers are serialized. In-memory
// databases use one connection for both.
type Store struct {
	writer  *sql.DB
	reader  *sql.DB
	path    string
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *telemetry.StoreMetrics
	closed  atomic.Bool
}

// Open creates or opens the database at path, applies pragmas and runs
// pending migrations. Any failure is an initialization error and leaves
// nothing open.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{
		busyTimeout:    defaultBusyTimeout,
		dirPermissions: defaultDirPermissions,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.tracer == nil {
		o.tracer = nooptrace.NewTracerProvider().Tracer(telemetry.ScopeName)
	}

	s := &Store{
		path:    path,
		logger:  o.logger.With("component", "store"),
		tracer:  o.tracer,
		metrics: o.metrics,
	}

	if err := s.open(ctx, o); err != nil {
		s.closeAll()
		return nil, initError("open store", path, err)
	}

	if pending, err := migrations.Pending(ctx, s.writer); err != nil {
		s.logger.Warn("could not list pending migrations", "error", err)
	} else {
		for _, m := range pending {
			s.logger.Info("applying migration", "version", m.Version, "name", m.Name)
		}
	}

	if err := migrations.RunMigrations(ctx, s.writer); err != nil {
		s.closeAll()
		return nil, initError("run migrations", path, err)
	}

	version, err := migrations.CurrentVersion(ctx, s.writer)
	if err != nil {
		s.logger.Warn("could not read schema version", "path", path, "error", err)
	}
	s.logger.Debug("store opened", "path", path, "schema_version", version)
	return s, nil
}

// initError reports a failed open. A refused path keeps its permission error
// as the cause so callers can tell it apart from a broken database.
func initError(operation, path string, err error) *errors.AppError {
	if stderrors.Is(err, os.ErrPermission) {
		permErr := errors.NewPermissionError(operation, path)
		permErr.Cause = err
		err = permErr
	}
	return errors.NewInitializationError(operation, err).WithContext("path", path)
}

func (s *Store) open(ctx context.Context, o options) error {
	if s.IsMemory() {
		db, err := sql.Open("sqlite", MemoryPath)
		if err != nil {
			return err
		}
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
		s.writer, s.reader = db, db
		return db.PingContext(ctx)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, o.dirPermissions); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	busyMillis := o.busyTimeout.Milliseconds()

	writer, err := sql.Open("sqlite", dsn(s.path, []string{
		fmt.Sprintf("busy_timeout(%d)", busyMillis),
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
	}, "immediate"))
	if err != nil {
		return err
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)
	s.writer = writer
	if err := writer.PingContext(ctx); err != nil {
		return err
	}

	reader, err := sql.Open("sqlite", dsn(s.path, []string{
		fmt.Sprintf("busy_timeout(%d)", busyMillis),
		"query_only(1)",
	}, ""))
	if err != nil {
		return err
	}
	s.reader = reader
	return reader.PingContext(ctx)
}

// dsn builds a modernc.org/sqlite connection string. Pragmas run on every new
// connection in the pool.
func dsn(path string, pragmas []string, txlock string) string {
	params := url.Values{}
	for _, p := range pragmas {
		params.Add("_pragma", p)
	}
	if txlock != "" {
		params.Set("_txlock", txlock)
	}
	return "file:" + path + "?" + params.Encode()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// IsMemory reports whether the store is an in-memory database.
func (s *Store) IsMemory() bool {
	return s.path == MemoryPath || s.path == ""
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	return migrations.CurrentVersion(ctx, s.writer)
}

// Close closes every pool. It is safe to call more than once.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.closeAll()
	s.logger.Debug("store closed", "path", s.path)
	return err
}

func (s *Store) closeAll() error {
	var errs []error
	if s.reader != nil && s.reader != s.writer {
		errs = append(errs, s.reader.Close())
	}
	if s.writer != nil {
		errs = append(errs, s.writer.Close())
	}
	return stderrors.Join(errs...)
}

// Read runs fn in a read-only transaction over the given collections. The
// transaction is always rolled back.
func (s *Store) Read(ctx context.Context, collections []Collection, fn func(*Tx) error) error {
	return s.run(ctx, ReadOnly, collections, fn)
}

// Write runs fn in a read-write transaction over the given collections. It
// commits only if fn and every statement succeed; otherwise nothing is kept.
func (s *Store) Write(ctx context.Context, collections []Collection, fn func(*Tx) error) error {
	return s.run(ctx, ReadWrite, collections, fn)
}

// Query runs fn in a read-only transaction and returns its value.
func Query[T any](ctx context.Context, s *Store, collections []Collection, fn func(*Tx) (T, error)) (T, error) {
	var result T
	err := s.Read(ctx, collections, func(tx *Tx) error {
		v, err := fn(tx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func (s *Store) run(ctx context.Context, mode Mode, collections []Collection, fn func(*Tx) error) (err error) {
	operation := mode.String() + " " + joinCollections(collections)

	if s.closed.Load() {
		return errors.NewTransactionError(operation, ErrStoreClosed)
	}

	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "store."+mode.spanName(),
		telemetry.AttrTxMode.String(mode.String()),
		telemetry.AttrCollections.StringSlice(collectionNames(collections)),
	)
	defer func() {
		telemetry.EndSpan(span, err)
		s.metrics.RecordTransaction(ctx, mode.String(), time.Since(start), err)
	}()

	db := s.writer
	if mode == ReadOnly {
		db = s.reader
	}

	sqlTx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: mode == ReadOnly})
	if err != nil {
		if stderrors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
			err = ErrStoreClosed
		}
		return wrapTxError(ctx, operation, err)
	}

	tx := newTx(sqlTx, mode, collections)
	if fnErr := fn(tx); fnErr != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", "operation", operation, "error", rbErr)
		}
		return wrapTxError(ctx, operation, fnErr)
	}

	if mode == ReadOnly {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", "operation", operation, "error", rbErr)
		}
		return nil
	}

	if err := sqlTx.Commit(); err != nil {
		return wrapTxError(ctx, operation, err)
	}
	s.logger.Debug("transaction committed", "operation", operation, "elapsed", time.Since(start))
	return nil
}

// wrapTxError keeps domain outcomes raised inside fn as they are, reports an
// expired deadline as a timeout and turns every other storage failure into a
// transaction error.
func wrapTxError(ctx context.Context, operation string, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		switch appErr.Type {
		case errors.ErrorTypeNotFound, errors.ErrorTypeDuplicate, errors.ErrorTypeValidation,
			errors.ErrorTypeInvalidInput, errors.ErrorTypeTransaction, errors.ErrorTypeTimeout:
			return err
		}
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		timeoutErr := errors.NewTimeoutError(operation, deadlineOf(ctx))
		timeoutErr.Cause = err
		return timeoutErr
	}
	return errors.NewTransactionError(operation, err)
}

func deadlineOf(ctx context.Context) string {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline.Format(time.RFC3339Nano)
	}
	return "none"
}
