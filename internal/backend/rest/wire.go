package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasktrack/internal/service"
)

// wireTimeLayouts are tried in order. Zone-less values are taken as UTC.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// wireTime decodes the timestamp formats the API emits. null and "" decode
// to the zero value.
type wireTime struct {
	time.Time
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t, err := parseWireTime(s)
	if err != nil {
		return err
	}
	w.Time = t
	return nil
}

func (w wireTime) ptr() *time.Time {
	if w.IsZero() {
		return nil
	}
	t := w.Time
	return &t
}

func parseWireTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// formatWireTime renders t as an RFC 3339 UTC timestamp.
func formatWireTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

type credentialsDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registrationDTO struct {
	FirstName  string `json:"firstName"`
	SecondName string `json:"secondName,omitempty"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type refreshDTO struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

type userDTO struct {
	ID         string   `json:"id"`
	FirstName  string   `json:"firstName"`
	SecondName string   `json:"secondName"`
	Email      string   `json:"email"`
	RoleID     int      `json:"roleId"`
	CreatedAt  wireTime `json:"createdAt"`
}

func (d userDTO) toProfile() (service.UserProfile, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return service.UserProfile{}, fmt.Errorf("user id: %w", err)
	}
	return service.UserProfile{
		ID:         id,
		FirstName:  d.FirstName,
		SecondName: d.SecondName,
		Email:      d.Email,
		RoleID:     d.RoleID,
		CreatedAt:  d.CreatedAt.Time,
	}, nil
}

type profileUpdateDTO struct {
	UserID     string  `json:"userId"`
	FirstName  *string `json:"firstName,omitempty"`
	SecondName *string `json:"secondName,omitempty"`
	Email      *string `json:"email,omitempty"`
}

type passwordChangeDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type taskDTO struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      json.RawMessage `json:"status"`
	CreatedAt   wireTime        `json:"createdAt"`
	UpdatedAt   wireTime        `json:"updatedAt"`
	DueDate     wireTime        `json:"dueDate"`
}

type createTaskDTO struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      int    `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
	UserID      string `json:"userId"`
}

type updateTaskDTO struct {
	TaskID      string  `json:"taskId"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *int    `json:"status,omitempty"`
	DueDate     string  `json:"dueDate,omitempty"`
}

type deleteTaskDTO struct {
	TaskID string `json:"taskId"`
}

// decodeStatus accepts the integer wire code and, for older servers, the
// string label. ok is false when the value is missing or unknown.
func decodeStatus(raw json.RawMessage) (service.Status, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return service.StatusTodo, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		s, err := service.StatusFromWire(n)
		return s, err == nil
	}
	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		s, err := service.ParseStatus(label)
		return s, err == nil
	}
	return service.StatusTodo, false
}
