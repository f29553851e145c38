// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasktrack/internal/gateway"
	"tasktrack/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = gateway.NewAPIError(404, "not found")

type fakeUser struct {
	profile  service.UserProfile
	password string
	refresh  string
}

// FakeService is an in-memory implementation of service.Service for testing.
// Tokens it issues are real JWTs valid for TokenTTL.
type FakeService struct {
	mu    sync.RWMutex
	users map[string]*fakeUser // email -> user
	tasks []service.Task
	calls map[string]int

	// Now is the clock used for issued tokens and timestamps.
	Now func() time.Time

	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration

	// Error injection for testing
	LoginErr          error
	RegisterErr       error
	RefreshErr        error
	LogoutErr         error
	GetUserErr        error
	UpdateProfileErr  error
	ChangePasswordErr error
	ListTasksErr      error
	CreateTaskErr     error
	UpdateTaskErr     error
	DeleteTaskErr     error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:    make(map[string]*fakeUser),
		calls:    make(map[string]int),
		Now:      time.Now,
		TokenTTL: time.Hour,
	}
}

// AddUser registers a user and returns its profile.
func (f *FakeService) AddUser(email, password, firstName string) service.UserProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := service.UserProfile{
		ID:        uuid.New(),
		FirstName: firstName,
		Email:     email,
		RoleID:    1,
		CreatedAt: f.Now().UTC(),
	}
	f.users[email] = &fakeUser{profile: profile, password: password}
	return profile
}

// AddTask stores a task directly, bypassing CreateTask.
func (f *FakeService) AddTask(userID uuid.UUID, title string, status service.Status, due *time.Time) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Status:    status,
		CreatedAt: f.Now().UTC(),
		DueDate:   due,
	}
	f.tasks = append(f.tasks, task)
	return task
}

// IssueTokens returns a fresh token pair for a registered user.
func (f *FakeService) IssueTokens(email string) service.TokenPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueLocked(f.users[email])
}

// Calls returns how many times a method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// StoredTasks returns the server-side tasks of a user.
func (f *FakeService) StoredTasks(userID uuid.UUID) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var result []service.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeService) issueLocked(u *fakeUser) service.TokenPair {
	u.refresh = uuid.NewString()
	return service.TokenPair{
		AccessToken:  MintToken(u.profile.ID, u.profile.Email, f.Now().Add(f.TokenTTL)),
		RefreshToken: u.refresh,
	}
}

func (f *FakeService) userByIDLocked(id uuid.UUID) *fakeUser {
	for _, u := range f.users {
		if u.profile.ID == id {
			return u
		}
	}
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.TokenPair, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.TokenPair{}, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[creds.Email]
	if !ok || u.password != creds.Password {
		return service.TokenPair{}, gateway.NewAPIError(401, "Invalid email or password")
	}
	return f.issueLocked(u), nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) (service.TokenPair, error) {
	f.record("Register")
	if f.RegisterErr != nil {
		return service.TokenPair{}, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[reg.Email]; exists {
		return service.TokenPair{}, gateway.NewAPIError(409, "User with this email already exists")
	}
	u := &fakeUser{
		profile: service.UserProfile{
			ID:         uuid.New(),
			FirstName:  reg.FirstName,
			SecondName: reg.SecondName,
			Email:      reg.Email,
			RoleID:     1,
			CreatedAt:  f.Now().UTC(),
		},
		password: reg.Password,
	}
	f.users[reg.Email] = u
	return f.issueLocked(u), nil
}

// Refresh implements service.Service.
func (f *FakeService) Refresh(ctx context.Context, email, refreshToken string) (service.TokenPair, error) {
	f.record("Refresh")
	if f.RefreshErr != nil {
		return service.TokenPair{}, f.RefreshErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.refresh == "" || u.refresh != refreshToken {
		return service.TokenPair{}, gateway.NewAPIError(401, "Invalid refresh token")
	}
	return f.issueLocked(u), nil
}

// Logout implements service.Service.
func (f *FakeService) Logout(ctx context.Context) error {
	f.record("Logout")
	return f.LogoutErr
}

// GetUser implements service.Service.
func (f *FakeService) GetUser(ctx context.Context, userID uuid.UUID) (service.UserProfile, error) {
	f.record("GetUser")
	if f.GetUserErr != nil {
		return service.UserProfile{}, f.GetUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	u := f.userByIDLocked(userID)
	if u == nil {
		return service.UserProfile{}, ErrNotFound
	}
	return u.profile, nil
}

// UpdateProfile implements service.Service.
func (f *FakeService) UpdateProfile(ctx context.Context, upd service.ProfileUpdate) (service.UserProfile, error) {
	f.record("UpdateProfile")
	if f.UpdateProfileErr != nil {
		return service.UserProfile{}, f.UpdateProfileErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.userByIDLocked(upd.UserID)
	if u == nil {
		return service.UserProfile{}, ErrNotFound
	}
	if upd.FirstName != nil {
		u.profile.FirstName = *upd.FirstName
	}
	if upd.SecondName != nil {
		u.profile.SecondName = *upd.SecondName
	}
	if upd.Email != nil && *upd.Email != u.profile.Email {
		delete(f.users, u.profile.Email)
		u.profile.Email = *upd.Email
		f.users[u.profile.Email] = u
	}
	return u.profile, nil
}

// ChangePassword implements service.Service.
func (f *FakeService) ChangePassword(ctx context.Context, userID uuid.UUID, change service.PasswordChange) error {
	f.record("ChangePassword")
	if f.ChangePasswordErr != nil {
		return f.ChangePasswordErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.userByIDLocked(userID)
	if u == nil {
		return ErrNotFound
	}
	if u.password != change.CurrentPassword {
		return gateway.NewAPIError(400, "Current password is incorrect")
	}
	u.password = change.NewPassword
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, userID uuid.UUID) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.StoredTasks(userID), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	if req.Title == "" {
		return service.Task{}, gateway.NewAPIError(400, "Title is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CreatedAt:   f.Now().UTC(),
		DueDate:     req.DueDate,
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, req service.UpdateTaskRequest) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		t := &f.tasks[i]
		if t.ID != req.TaskID {
			continue
		}
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Status != nil {
			t.Status = *req.Status
		}
		if req.DueDate != nil {
			t.DueDate = req.DueDate
		}
		now := f.Now().UTC()
		t.UpdatedAt = &now
		return *t, nil
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID uuid.UUID) (service.Task, error) {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return service.Task{}, f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// Compile-time interface check.
var _ service.Service = (*FakeService)(nil)

// Errorf builds an APIError for injection.
func Errorf(status int, format string, args ...any) error {
	return gateway.NewAPIError(status, fmt.Sprintf(format, args...))
}

// ErrTransport is a transport failure for injection.
var ErrTransport = fmt.Errorf("%w: connection refused", gateway.ErrTransport)
