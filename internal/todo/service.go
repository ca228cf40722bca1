package todo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todoapp-go/internal/logging"
)

// Store persists the whole task collection. Load never reports corrupt or
// missing data as an error; it returns an empty collection instead.
type Store interface {
	Load(ctx context.Context) ([]Task, error)
	Save(ctx context.Context, tasks []Task) error
}

// Locker is implemented by stores that can exclude other processes for the
// duration of a load-mutate-save cycle.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}

// Service implements the task operations. Every operation reloads the
// collection from the store; nothing is cached between calls.
type Service struct {
	store  Store
	ids    IDGenerator
	now    func() time.Time
	logger *log.Logger

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator sets the id generator (default Base36IDs).
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithClock sets the time source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a task service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ids:    Base36IDs{},
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withCollection runs fn under the service lock (and the store lock, if any).
// When fn returns save=true the resulting collection is persisted.
func (s *Service) withCollection(ctx context.Context, fn func(tasks []Task) ([]Task, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.store.(Locker); ok {
		unlock, err := l.Lock(ctx)
		if err != nil {
			return fmt.Errorf("lock store: %w", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				s.logger.Warn("unlock store", "err", err)
			}
		}()
	}

	tasks, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	updated, save, err := fn(tasks)
	if err != nil {
		return err
	}
	if !save {
		return nil
	}
	if err := s.store.Save(ctx, updated); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// List returns the stored collection unchanged.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	var out []Task
	err := s.withCollection(ctx, func(tasks []Task) ([]Task, bool, error) {
		out = tasks
		return nil, false, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Task{}
	}
	return out, nil
}

// ListFiltered returns the tasks matching f in stored order.
func (s *Service) ListFiltered(ctx context.Context, f Filter) ([]Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(tasks), nil
}

// Create appends a new task. text must be present and not blank.
func (s *Service) Create(ctx context.Context, text *string) (Task, error) {
	if text == nil {
		return Task{}, invalidInput("Text is required")
	}
	trimmed := TrimText(*text)
	if trimmed == "" {
		return Task{}, invalidInput("Text is required")
	}

	var created Task
	err := s.withCollection(ctx, func(tasks []Task) ([]Task, bool, error) {
		created = Task{
			ID:        s.ids.NewID(),
			Text:      trimmed,
			Completed: false,
			CreatedAt: s.now().UnixMilli(),
		}
		return append(tasks, created), true, nil
	})
	if err != nil {
		return Task{}, err
	}
	s.logger.Debug("task created", "id", created.ID)
	return created, nil
}

// Update applies a patch to the task with the given id. Text that is blank
// after trimming leaves the stored text unchanged.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Task, error) {
	var updated Task
	err := s.withCollection(ctx, func(tasks []Task) ([]Task, bool, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, false, notFound(id)
		}
		if patch.Text != nil {
			if text := TrimText(*patch.Text); text != "" {
				tasks[i].Text = text
			}
		}
		if patch.Completed != nil {
			tasks[i].Completed = *patch.Completed
		}
		updated = tasks[i]
		return tasks, true, nil
	})
	if err != nil {
		return Task{}, err
	}
	s.logger.Debug("task updated", "id", id)
	return updated, nil
}

// Delete removes the task with the given id and returns it.
func (s *Service) Delete(ctx context.Context, id string) (Task, error) {
	var removed Task
	err := s.withCollection(ctx, func(tasks []Task) ([]Task, bool, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, false, notFound(id)
		}
		removed = tasks[i]
		return append(tasks[:i], tasks[i+1:]...), true, nil
	})
	if err != nil {
		return Task{}, err
	}
	s.logger.Debug("task deleted", "id", id)
	return removed, nil
}

// ClearCompleted removes every completed task and reports how many were removed.
func (s *Service) ClearCompleted(ctx context.Context) (ClearResult, error) {
	var result ClearResult
	err := s.withCollection(ctx, func(tasks []Task) ([]Task, bool, error) {
		active := FilterActive.Apply(tasks)
		result.Cleared = len(tasks) - len(active)
		return active, true, nil
	})
	if err != nil {
		return ClearResult{}, err
	}
	s.logger.Debug("cleared completed tasks", "cleared", result.Cleared)
	return result, nil
}

// ToggleAll sets completed on every task and returns the updated collection.
func (s *Service) ToggleAll(ctx context.Context, completed *bool) ([]Task, error) {
	if completed == nil {
		return nil, invalidInput("completed boolean required")
	}

	var out []Task
	err := s.withCollection(ctx, func(tasks []Task) ([]Task, bool, error) {
		for i := range tasks {
			tasks[i].Completed = *completed
		}
		out = tasks
		return tasks, true, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Task{}
	}
	s.logger.Debug("toggled all tasks", "completed", *completed, "count", len(out))
	return out, nil
}
