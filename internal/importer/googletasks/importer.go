package googletasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tasktrack/internal/service"
	"tasktrack/internal/tasks"
)

// ErrSource wraps failures reading from the import source.
var ErrSource = errors.New("import source")

// Summary counts the outcome of an import.
type Summary struct {
	Imported int
	Skipped  int
}

// Import adds the open tasks of lists to store. Tasks whose title and due
// date already exist in the store are skipped, so repeated imports are safe.
// The store must be loaded first.
func Import(ctx context.Context, src Source, store *tasks.Store, lists []List) (Summary, error) {
	seen := make(map[string]bool)
	for _, t := range store.Tasks() {
		seen[dedupeKey(t.Title, tasks.FormFromTask(t).DueDate)] = true
	}

	var sum Summary
	for _, list := range lists {
		items, err := src.OpenTasks(ctx, list.ID)
		if err != nil {
			return sum, fmt.Errorf("%w: list %s: %w", ErrSource, list.Title, err)
		}
		for _, item := range items {
			form := formFromItem(item)
			key := dedupeKey(form.Title, form.DueDate)
			if strings.TrimSpace(form.Title) == "" || seen[key] {
				sum.Skipped++
				continue
			}
			if _, err := store.AddTask(ctx, form); err != nil {
				return sum, err
			}
			seen[key] = true
			sum.Imported++
		}
	}
	return sum, nil
}

func formFromItem(item Item) tasks.Form {
	form := tasks.Form{
		Title:       strings.TrimSpace(item.Title),
		Description: item.Notes,
		Status:      service.StatusTodo.String(),
	}
	if item.Due != nil {
		form.DueDate = item.Due.UTC().Format(tasks.DateLayout)
	}
	return form
}

func dedupeKey(title, due string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + due
}
