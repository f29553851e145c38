package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tasktrack/internal/app"
	"tasktrack/internal/service"
)

// findTask loads the user's tasks and resolves ref against them. Numbers
// index the default listing, which is what an unfiltered list prints.
func findTask(ctx context.Context, a *app.App, ref TaskRef) (service.Task, error) {
	if err := a.Tasks.LoadTasks(ctx); err != nil {
		return service.Task{}, err
	}
	view := a.Tasks.View()

	switch {
	case ref.Num > 0:
		if ref.Num > len(view) {
			return service.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
		}
		return view[ref.Num-1], nil

	case ref.Prefix != "":
		var matches []service.Task
		for _, t := range view {
			if strings.HasPrefix(t.ID.String(), ref.Prefix) {
				matches = append(matches, t)
			}
		}
		switch len(matches) {
		case 0:
			return service.Task{}, fmt.Errorf("task not found: %s", ref)
		case 1:
			return matches[0], nil
		default:
			return service.Task{}, fmt.Errorf("ambiguous task reference: %s", ref)
		}

	default:
		for _, t := range view {
			if t.ID == ref.ID {
				return t, nil
			}
		}
		return service.Task{}, fmt.Errorf("task not found: %s", ref)
	}
}

// numbering maps task IDs to their position in the default listing.
func numbering(view []service.Task) map[uuid.UUID]int {
	nums := make(map[uuid.UUID]int, len(view))
	for i, t := range view {
		nums[t.ID] = i + 1
	}
	return nums
}
