// Package tasks holds the signed-in user's task collection and the view
// state (filters, sort) applied to it.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasktrack/internal/gateway"
	"tasktrack/internal/service"
)

var (
	// ErrUnauthenticated is returned when no user is signed in.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTaskNotFound is returned when editing a task not in the collection.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidForm is returned when form input cannot be mapped to a task.
	ErrInvalidForm = errors.New("invalid task form")
)

// API is the subset of service.Service the store calls.
type API interface {
	ListTasks(ctx context.Context, userID uuid.UUID) ([]service.Task, error)
	CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error)
	UpdateTask(ctx context.Context, req service.UpdateTaskRequest) (service.Task, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) (service.Task, error)
}

// UserSource reports the signed-in user. The session manager implements it.
type UserSource interface {
	UserID() (uuid.UUID, bool)
}

// State is a snapshot of the store's status and view settings.
type State struct {
	IsLoading bool
	Error     string
	Filters   Filters
	SortBy    SortKey
	Direction Direction
}

// Store owns the task collection. Entries are unique by ID.
type Store struct {
	api   API
	users UserSource
	log   *zap.Logger

	mu      sync.Mutex
	tasks   []service.Task
	loading int
	err     string
	filters Filters
	sortBy  SortKey
	dir     Direction
}

// New creates an empty Store.
func New(api API, users UserSource, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		api:    api,
		users:  users,
		log:    log.Named("tasks"),
		sortBy: SortCreated,
	}
}

// Tasks returns a copy of the collection in server order.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// View returns the filtered and sorted tasks.
func (s *Store) View() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterAndSort(s.tasks, s.filters, s.sortBy, s.dir)
}

// State returns the loading flag, error and view settings.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		IsLoading: s.loading > 0,
		Error:     s.err,
		Filters:   s.filters,
		SortBy:    s.sortBy,
		Direction: s.dir,
	}
}

// LoadTasks replaces the collection with the user's tasks from the server.
// On failure the previous collection is kept.
func (s *Store) LoadTasks(ctx context.Context) error {
	userID, ok := s.users.UserID()
	if !ok {
		s.mu.Lock()
		s.tasks = nil
		s.err = ErrUnauthenticated.Error()
		s.mu.Unlock()
		return ErrUnauthenticated
	}

	done := s.begin()
	defer done()

	list, err := s.api.ListTasks(ctx, userID)
	if err != nil {
		return s.fail("load tasks", err)
	}

	s.mu.Lock()
	s.tasks = nil
	for _, t := range list {
		s.upsertLocked(t)
	}
	s.mu.Unlock()

	s.log.Debug("tasks loaded", zap.Int("count", len(list)))
	return nil
}

// AddTask creates a task from form and appends the server's record.
func (s *Store) AddTask(ctx context.Context, form Form) (service.Task, error) {
	userID, err := s.requireUser()
	if err != nil {
		return service.Task{}, err
	}
	p, err := form.parse()
	if err != nil {
		s.setError(err.Error())
		return service.Task{}, err
	}

	done := s.begin()
	defer done()

	task, err := s.api.CreateTask(ctx, service.CreateTaskRequest{
		UserID:      userID,
		Title:       p.title,
		Description: p.description,
		Status:      p.status,
		DueDate:     p.due,
	})
	if err != nil {
		return service.Task{}, s.fail("add task", err)
	}

	s.mu.Lock()
	s.upsertLocked(task)
	s.mu.Unlock()
	return task, nil
}

// EditTask sends form as the new values of task id and replaces the entry
// with the server's record. Unknown ids fail without a request.
func (s *Store) EditTask(ctx context.Context, id uuid.UUID, form Form) (service.Task, error) {
	if _, err := s.requireUser(); err != nil {
		return service.Task{}, err
	}
	if !s.contains(id) {
		s.setError(ErrTaskNotFound.Error())
		return service.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	p, err := form.parse()
	if err != nil {
		s.setError(err.Error())
		return service.Task{}, err
	}

	done := s.begin()
	defer done()

	task, err := s.api.UpdateTask(ctx, service.UpdateTaskRequest{
		TaskID:      id,
		Title:       &p.title,
		Description: &p.description,
		Status:      &p.status,
		DueDate:     p.due,
	})
	if err != nil {
		return service.Task{}, s.fail("edit task", err)
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.tasks[i] = task
	}
	s.mu.Unlock()
	return task, nil
}

// RemoveTask deletes task id and drops it from the collection.
func (s *Store) RemoveTask(ctx context.Context, id uuid.UUID) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}

	done := s.begin()
	defer done()

	if _, err := s.api.DeleteTask(ctx, id); err != nil {
		return s.fail("remove task", err)
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()
	return nil
}

// SetFilters merges the set fields of f into the current filters.
func (s *Store) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Status != nil {
		st := *f.Status
		s.filters.Status = &st
	}
	if f.DueDate != nil {
		d := *f.DueDate
		s.filters.DueDate = &d
	}
	if f.SearchTerm != "" {
		s.filters.SearchTerm = f.SearchTerm
	}
}

// ResetFilters clears every filter.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = Filters{}
}

// SetSortBy changes the sort key.
func (s *Store) SetSortBy(key SortKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = key
}

// SetSortDirection changes the sort direction.
func (s *Store) SetSortDirection(dir Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir = dir
}

// ClearError dismisses the current error.
func (s *Store) ClearError() {
	s.setError("")
}

func (s *Store) requireUser() (uuid.UUID, error) {
	userID, ok := s.users.UserID()
	if !ok {
		s.setError(ErrUnauthenticated.Error())
		return uuid.Nil, ErrUnauthenticated
	}
	return userID, nil
}

func (s *Store) contains(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// begin marks an operation in flight, clears the error and returns the
// completion func.
func (s *Store) begin() func() {
	s.mu.Lock()
	s.loading++
	s.err = ""
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}
}

func (s *Store) fail(op string, err error) error {
	s.setError(gateway.Message(err))
	s.log.Debug(op+" failed", zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func (s *Store) indexLocked(id uuid.UUID) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) upsertLocked(t service.Task) {
	if i := s.indexLocked(t.ID); i >= 0 {
		s.tasks[i] = t
		return
	}
	s.tasks = append(s.tasks, t)
}
