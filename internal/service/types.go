// Package service defines the backend-agnostic types and interface for the task API.
package service

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the authenticated user's profile as returned by the server.
type UserProfile struct {
	ID         uuid.UUID
	FirstName  string
	SecondName string
	Email      string
	RoleID     int
	CreatedAt  time.Time
}

// Task represents a single task item.
type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DueDate     *time.Time
}

// TokenPair is an access/refresh token pair issued by the auth endpoints.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Credentials are the login form values.
type Credentials struct {
	Email    string
	Password string
}

// Registration holds the values of the sign-up form.
type Registration struct {
	FirstName  string
	SecondName string
	LastName   string
	Email      string
	Password   string
}

// ProfileUpdate changes selected profile fields. Nil fields are left as is.
type ProfileUpdate struct {
	UserID     uuid.UUID
	FirstName  *string
	SecondName *string
	Email      *string
}

// PasswordChange holds the current and the new password.
type PasswordChange struct {
	CurrentPassword string
	NewPassword     string
}

// CreateTaskRequest describes a task to create for a user.
type CreateTaskRequest struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Status      Status
	DueDate     *time.Time
}

// UpdateTaskRequest describes changes to an existing task.
// Nil fields are not sent.
type UpdateTaskRequest struct {
	TaskID      uuid.UUID
	Title       *string
	Description *string
	Status      *Status
	DueDate     *time.Time
}
