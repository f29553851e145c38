package tasks

import (
	"fmt"
	"strings"
	"time"

	"tasktrack/internal/service"
)

// DateLayout is the UI date format for due dates.
const DateLayout = "2006-01-02"

// Form is the task form as the user fills it in.
type Form struct {
	Title       string
	Description string
	Status      string // UI label; empty means todo
	DueDate     string // DateLayout; empty means none
}

// FormFromTask pre-fills a Form with a task's current values.
func FormFromTask(t service.Task) Form {
	f := Form{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.UTC().Format(DateLayout)
	}
	return f
}

type parsedForm struct {
	title       string
	description string
	status      service.Status
	due         *time.Time
}

func (f Form) parse() (parsedForm, error) {
	p := parsedForm{
		title:       strings.TrimSpace(f.Title),
		description: strings.TrimSpace(f.Description),
	}
	if p.title == "" {
		return parsedForm{}, fmt.Errorf("%w: title is required", ErrInvalidForm)
	}

	if strings.TrimSpace(f.Status) != "" {
		s, err := service.ParseStatus(f.Status)
		if err != nil {
			return parsedForm{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
		}
		p.status = s
	}

	if d := strings.TrimSpace(f.DueDate); d != "" {
		due, err := ParseDate(d)
		if err != nil {
			return parsedForm{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
		}
		p.due = &due
	}
	return p, nil
}

// ParseDate parses a UI date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t.UTC(), nil
}
