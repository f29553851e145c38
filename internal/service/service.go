package service

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks

// Service defines the interface for task API operations.
// All REST calls go through this interface.
// Commands never talk HTTP directly.
type Service interface {
	// Login exchanges credentials for a token pair.
	Login(ctx context.Context, creds Credentials) (TokenPair, error)

	// Register creates an account and returns its first token pair.
	Register(ctx context.Context, reg Registration) (TokenPair, error)

	// Refresh exchanges a refresh token for a new pair.
	Refresh(ctx context.Context, email, refreshToken string) (TokenPair, error)

	// Logout asks the server to invalidate the current tokens.
	Logout(ctx context.Context) error

	// GetUser fetches a user profile by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (UserProfile, error)

	// UpdateProfile applies a profile update and returns the stored profile.
	UpdateProfile(ctx context.Context, upd ProfileUpdate) (UserProfile, error)

	// ChangePassword replaces the user's password.
	ChangePassword(ctx context.Context, userID uuid.UUID, change PasswordChange) error

	// ListTasks returns every task owned by the user.
	ListTasks(ctx context.Context, userID uuid.UUID) ([]Task, error)

	// CreateTask creates a task and returns the server's record.
	CreateTask(ctx context.Context, req CreateTaskRequest) (Task, error)

	// UpdateTask updates a task and returns the server's record.
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (Task, error)

	// DeleteTask deletes a task and returns the deleted record.
	DeleteTask(ctx context.Context, taskID uuid.UUID) (Task, error)
}
