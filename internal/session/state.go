package session

import (
	"errors"

	"tasktrack/internal/service"
)

var (
	// ErrNoToken is returned when establishing a session without an access token.
	ErrNoToken = errors.New("no access token")

	// ErrInvalidToken is returned when the access token cannot be decoded.
	ErrInvalidToken = errors.New("invalid access token")

	// ErrTokenExpired is returned when the access token's exp is in the past.
	ErrTokenExpired = errors.New("access token expired")

	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// User-facing error messages stored in State.Error.
const (
	MsgLoginFailed        = "login failed"
	MsgRegistrationFailed = "registration failed"
	MsgSessionInit        = "session init failed"
	MsgSessionExpired     = "session expired"
)

// Phase is the position in the session lifecycle.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseLoading
	PhaseAuthenticated
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session.
type State struct {
	User            *service.UserProfile
	AccessToken     string
	RefreshToken    string
	IsLoading       bool
	IsAuthenticated bool
	Error           string
	Phase           Phase
}
