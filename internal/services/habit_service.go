package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"habit-tracker/internal/config"
	"habit-tracker/internal/domain"
	"habit-tracker/internal/errors"
	"habit-tracker/internal/logging"
	"habit-tracker/internal/validation"
)

// habitServiceImpl implements HabitService
type habitServiceImpl struct {
	opener              StoreOpener
	logger              *slog.Logger
	taskValidator       *validation.TaskValidator
	completionValidator *validation.CompletionValidator

	mu       sync.Mutex
	state    State
	initErr  error
	backend  *Backend
	snapshot *domain.Snapshot
}

// Option configures the habit service.
type Option func(*habitServiceImpl)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *habitServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfig applies configured validation limits.
func WithConfig(cfg *config.Config) Option {
	return func(s *habitServiceImpl) {
		if cfg != nil {
			s.taskValidator = validation.NewTaskValidatorWithConfig(cfg)
		}
	}
}

// NewHabitService creates the facade. Storage is not touched until Initialize.
func NewHabitService(opener StoreOpener, opts ...Option) HabitService {
	s := &habitServiceImpl{
		opener:              opener,
		logger:              logging.Discard(),
		taskValidator:       validation.NewTaskValidator(),
		completionValidator: validation.NewCompletionValidator(),
		state:               StateUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "habit_service")
	return s
}

// Initialize opens the store. Calling it again once ready is a no-op; after
// a failure it returns the original initialization error.
func (s *habitServiceImpl) Initialize(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return nil
	case StateFailed:
		err := s.initErr
		s.mu.Unlock()
		return err
	case StateOpening:
		s.mu.Unlock()
		return errors.NewNotReadyError("initialize", StateOpening.String())
	}
	s.state = StateOpening
	s.mu.Unlock()

	log := s.opLogger("initialize")
	backend, err := s.opener(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if !errors.IsErrorType(err, errors.ErrorTypeInitialization) {
			err = errors.NewInitializationError("open store", err)
		}
		s.state = StateFailed
		s.initErr = err
		log.Error("store initialization failed", "error", err)
		return err
	}

	s.backend = backend
	s.snapshot = domain.NewSnapshot(nil, nil)
	s.state = StateReady
	log.Info("store ready")
	return nil
}

// LoadAll reads both collections in one transaction and replaces the held snapshot.
func (s *habitServiceImpl) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	backend, err := s.ready("load all")
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, backend, s.opLogger("load all"))
}

// AddTask validates the name, rejects duplicates already in the snapshot,
// persists, then reloads whether or not the write succeeded.
func (s *habitServiceImpl) AddTask(ctx context.Context, name string) (int64, error) {
	backend, err := s.ready("add task")
	if err != nil {
		return 0, err
	}
	log := s.opLogger("add task")

	trimmed, err := s.taskValidator.GetValidTaskName(name)
	if err != nil {
		return 0, toAppError(err)
	}

	s.mu.Lock()
	duplicate := s.snapshot.HasTaskNamed(trimmed)
	s.mu.Unlock()
	if duplicate {
		log.Debug("duplicate rejected from snapshot", "name", trimmed)
		return 0, errors.NewDuplicateTaskError(trimmed)
	}

	id, addErr := backend.Tasks.Add(ctx, trimmed)
	if addErr != nil {
		s.logFailure(log, "add task failed", addErr)
	} else {
		log.Info("task added", "task_id", id)
	}

	if _, err := s.reload(ctx, backend, log); err != nil && addErr == nil {
		return id, err
	}
	return id, addErr
}

// GetTask returns the task with id.
func (s *habitServiceImpl) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	backend, err := s.ready("get task")
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.taskValidator.ValidateTaskID(id); err != nil {
		return domain.Task{}, toAppError(err)
	}
	return backend.Tasks.Get(ctx, id)
}

// DeleteTask removes the task and its completions, then reloads regardless
// of outcome. Confirmation is the caller's job.
func (s *habitServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	backend, err := s.ready("delete task")
	if err != nil {
		return err
	}
	log := s.opLogger("delete task")

	if err := s.taskValidator.ValidateTaskID(id); err != nil {
		return toAppError(err)
	}

	removed, deleteErr := backend.Tasks.DeleteWithCount(ctx, id)
	if deleteErr != nil {
		s.logFailure(log, "delete task failed", deleteErr, "task_id", id)
	} else {
		log.Info("task deleted", "task_id", id, "completions_removed", removed)
	}

	if _, err := s.reload(ctx, backend, log); err != nil && deleteErr == nil {
		return err
	}
	return deleteErr
}

// SetCompletion updates the snapshot first, then persists. On failure the
// snapshot change is reverted and the caller is asked to refresh. There is
// no retry.
func (s *habitServiceImpl) SetCompletion(ctx context.Context, taskID int64, date domain.Date, completed bool) error {
	backend, err := s.ready("set completion")
	if err != nil {
		return err
	}
	if err := s.completionValidator.ValidateCompletion(taskID, date); err != nil {
		return toAppError(err)
	}
	return s.setCompletion(ctx, backend, s.opLogger("set completion"), taskID, date, completed)
}

// ToggleCompletion flips the snapshot value for the pair and returns the new value.
func (s *habitServiceImpl) ToggleCompletion(ctx context.Context, taskID int64, date domain.Date) (bool, error) {
	backend, err := s.ready("toggle completion")
	if err != nil {
		return false, err
	}
	if err := s.completionValidator.ValidateCompletion(taskID, date); err != nil {
		return false, toAppError(err)
	}

	s.mu.Lock()
	next := !s.snapshot.Completions.IsCompleted(taskID, date)
	s.mu.Unlock()

	if err := s.setCompletion(ctx, backend, s.opLogger("toggle completion"), taskID, date, next); err != nil {
		return !next, err
	}
	return next, nil
}

func (s *habitServiceImpl) setCompletion(ctx context.Context, backend *Backend, log *slog.Logger, taskID int64, date domain.Date, completed bool) error {
	key := domain.NewCompletionKey(taskID, date)

	s.mu.Lock()
	previous, had := s.snapshot.Completions.Lookup(taskID, date)
	s.snapshot.Completions[key] = completed
	s.mu.Unlock()

	err := backend.Completions.Set(ctx, taskID, date, completed)
	if err == nil {
		log.Debug("completion saved", "completion_id", key.RecordID(), "completed", completed)
		return nil
	}

	s.mu.Lock()
	if had {
		s.snapshot.Completions[key] = previous
	} else {
		delete(s.snapshot.Completions, key)
	}
	s.mu.Unlock()

	s.logFailure(log, "completion save failed, reverted", err, "completion_id", key.RecordID())
	if errors.IsNotFound(err) || errors.IsTransaction(err) || errors.IsErrorType(err, errors.ErrorTypeTimeout) {
		return err
	}
	return errors.NewTransactionError("set completion", err)
}

// GetCompletion reads one completion straight from storage.
func (s *habitServiceImpl) GetCompletion(ctx context.Context, taskID int64, date domain.Date) (domain.Completion, bool, error) {
	backend, err := s.ready("get completion")
	if err != nil {
		return domain.Completion{}, false, err
	}
	return backend.Completions.Get(ctx, taskID, date)
}

// Snapshot returns a copy of the last loaded snapshot.
func (s *habitServiceImpl) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// State returns the lifecycle state.
func (s *habitServiceImpl) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close releases the store. The service is uninitialized afterwards.
func (s *habitServiceImpl) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return nil
	}
	var err error
	if s.backend.Closer != nil {
		err = s.backend.Closer.Close()
	}
	s.backend = nil
	s.snapshot = nil
	s.state = StateUninitialized
	return err
}

// ready returns the backend or a NotReady error naming the current state.
func (s *habitServiceImpl) ready(operation string) (*Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, errors.NewNotReadyError(operation, s.state.String())
	}
	return s.backend, nil
}

func (s *habitServiceImpl) reload(ctx context.Context, backend *Backend, log *slog.Logger) (*domain.Snapshot, error) {
	snapshot, err := backend.Loader.LoadAll(ctx)
	if err != nil {
		s.logFailure(log, "reload failed", err)
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	log.Debug("snapshot loaded", "tasks", len(snapshot.Tasks), "completions", len(snapshot.Completions))
	return snapshot.Clone(), nil
}

// opLogger tags one command with a time-ordered operation id.
func (s *habitServiceImpl) opLogger(operation string) *slog.Logger {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return s.logger.With("operation", operation, "op_id", id.String())
}

func (s *habitServiceImpl) logFailure(log *slog.Logger, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if errors.ShouldLogError(err) {
		log.Error(msg, args...)
		return
	}
	log.Debug(msg, args...)
}

// toAppError converts field-level validation failures into the application taxonomy.
func toAppError(err error) error {
	if ve, ok := err.(*validation.ValidationError); ok {
		return ve.ToAppError()
	}
	return fmt.Errorf("validate: %w", err)
}
