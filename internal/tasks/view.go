package tasks

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"tasktrack/internal/service"
)

// Filters narrow the visible tasks. Zero fields match everything.
type Filters struct {
	Status     *service.Status
	DueDate    *time.Time
	SearchTerm string
}

// SortKey selects the field tasks are ordered by.
type SortKey string

const (
	SortCreated SortKey = "created"
	SortTitle   SortKey = "title"
	SortStatus  SortKey = "status"
	SortDue     SortKey = "due"
)

// ParseSortKey accepts the key names and their API field spellings.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "created", "createdat":
		return SortCreated, nil
	case "title":
		return SortTitle, nil
	case "status":
		return SortStatus, nil
	case "due", "duedate":
		return SortDue, nil
	}
	return "", fmt.Errorf("invalid sort key: %s (want created, title, status or due)", s)
}

// Direction is the sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

func (f Filters) match(t service.Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.DueDate != nil {
		if t.DueDate == nil || !sameDay(*t.DueDate, *f.DueDate) {
			return false
		}
	}
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" {
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	return a.UTC().Format(DateLayout) == b.UTC().Format(DateLayout)
}

// filterAndSort returns a filtered copy of tasks in a stable order. Tasks
// without a value for the sort key come last in either direction.
func filterAndSort(tasks []service.Task, f Filters, key SortKey, dir Direction) []service.Task {
	result := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.match(t) {
			result = append(result, t)
		}
	}

	slices.SortStableFunc(result, func(a, b service.Task) int {
		switch key {
		case SortTitle:
			return directed(dir, strings.Compare(a.Title, b.Title))
		case SortStatus:
			return directed(dir, cmp.Compare(a.Status, b.Status))
		case SortDue:
			return compareOptional(a.DueDate, b.DueDate, dir)
		default:
			return compareOptional(optionalTime(a.CreatedAt), optionalTime(b.CreatedAt), dir)
		}
	})
	return result
}

func directed(dir Direction, c int) int {
	if dir == Descending {
		return -c
	}
	return c
}

func compareOptional(a, b *time.Time, dir Direction) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return directed(dir, a.Compare(*b))
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
