// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/service"
)

const (
	// dateLayout is how due dates are shown.
	dateLayout = "2006-01-02"

	// ShortIDLen is the number of ID characters shown in listings.
	ShortIDLen = 8
)

// FormatTask formats a task line.
// Format: "{N:>4}  {ID8}  {STATUS:<11}  {TITLE}[  (due {DATE})]\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	title := normalizeTitle(task.Title)
	line := fmt.Sprintf("%4d  %s  %-11s  %s", num, ShortID(task), task.Status, title)
	if task.DueDate != nil {
		line += fmt.Sprintf("  (due %s)", task.DueDate.UTC().Format(dateLayout))
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail formats a single task with its description.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:      %s\n", task.Status)
	if task.DueDate != nil {
		fmt.Fprintf(w, "due:         %s\n", task.DueDate.UTC().Format(dateLayout))
	}
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "created:     %s\n", task.CreatedAt.UTC().Format(dateLayout))
	}
	if d := strings.TrimSpace(task.Description); d != "" {
		fmt.Fprintf(w, "description: %s\n", normalizeTitle(d))
	}
}

// FormatProfile formats the user profile.
func FormatProfile(w io.Writer, user service.UserProfile) {
	name := strings.TrimSpace(user.FirstName + " " + user.SecondName)
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "name:    %s\n", name)
	fmt.Fprintf(w, "email:   %s\n", user.Email)
	fmt.Fprintf(w, "id:      %s\n", user.ID)
	if !user.CreatedAt.IsZero() {
		fmt.Fprintf(w, "since:   %s\n", user.CreatedAt.UTC().Format(dateLayout))
	}
}

// ShortID returns the first ShortIDLen characters of the task ID.
func ShortID(task service.Task) string {
	return task.ID.String()[:ShortIDLen]
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
