package service

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the lifecycle state of a task.
// The numeric value is the wire encoding.
type Status int

const (
	StatusTodo Status = iota
	StatusInProgress
	StatusDone
	StatusArchived
)

// ErrUnknownStatus is returned for labels or wire codes outside the enum.
var ErrUnknownStatus = errors.New("unknown task status")

// statusLabels is the single mapping between wire codes and UI labels.
var statusLabels = [...]string{
	StatusTodo:       "todo",
	StatusInProgress: "in_progress",
	StatusDone:       "done",
	StatusArchived:   "archived",
}

// Statuses returns all statuses in wire order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone, StatusArchived}
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	return s >= StatusTodo && s <= StatusArchived
}

// String returns the UI label.
func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusLabels[s]
}

// ToWire returns the integer sent to the API.
func (s Status) ToWire() int {
	return int(s)
}

// StatusFromWire decodes an API status code.
func StatusFromWire(n int) (Status, error) {
	s := Status(n)
	if !s.Valid() {
		return StatusTodo, fmt.Errorf("%w: %d", ErrUnknownStatus, n)
	}
	return s, nil
}

// ParseStatus maps a UI label to a Status.
// Matching is case-insensitive and treats spaces and dashes as underscores.
func ParseStatus(label string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(label))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for i, l := range statusLabels {
		if l == norm {
			return Status(i), nil
		}
	}
	return StatusTodo, fmt.Errorf("%w: %s", ErrUnknownStatus, label)
}
