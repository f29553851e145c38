package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport wraps failures to reach the server or read its reply.
	ErrTransport = errors.New("transport error")

	// ErrTimeout is wrapped into ErrTransport when the per-call deadline expires.
	ErrTimeout = errors.New("request timed out")

	// ErrRefreshFailed is returned to every request that waited on a failed refresh.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoRefreshCredentials means the session has no email or refresh token.
	ErrNoRefreshCredentials = errors.New("no refresh credentials")
)

// maxMessageLen bounds plain-text error bodies used as messages.
const maxMessageLen = 200

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string

	// fromServer is false when Message is only the status text.
	fromServer bool
}

// ServerMessage returns the message the server put in the body, or "".
func (e *APIError) ServerMessage() string {
	if !e.fromServer {
		return ""
	}
	return e.Message
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// errorBody covers the message fields used by the API and by
// problem-details responses. Field matching is case-insensitive.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Title   string `json:"title"`
	Detail  string `json:"detail"`
}

// NewAPIError builds an APIError carrying a server message.
// An empty message falls back to the status text.
func NewAPIError(status int, message string) *APIError {
	if message == "" {
		return &APIError{StatusCode: status, Message: statusMessage(status)}
	}
	return &APIError{StatusCode: status, Message: message, fromServer: true}
}

func newAPIError(status int, body []byte) *APIError {
	if msg := extractMessage(body); msg != "" {
		return &APIError{StatusCode: status, Message: msg, fromServer: true}
	}
	return &APIError{StatusCode: status, Message: statusMessage(status)}
}

func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" {
		var eb errorBody
		if err := json.Unmarshal([]byte(trimmed), &eb); err == nil {
			for _, m := range []string{eb.Message, eb.Error, eb.Title, eb.Detail} {
				if m = strings.TrimSpace(m); m != "" {
					return m
				}
			}
		}
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		if !strings.HasPrefix(trimmed, "<") && !strings.HasPrefix(trimmed, "{") &&
			!strings.HasPrefix(trimmed, "[") && len(trimmed) <= maxMessageLen {
			return trimmed
		}
	}
	return ""
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransport, ErrTimeout)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// Message normalizes any error from a gateway call to one user-facing string:
// the server's message when there is one, then the transport error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrTimeout) {
		return ErrTimeout.Error()
	}
	return err.Error()
}
