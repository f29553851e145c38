package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"tasktrack/internal/service"
	"tasktrack/internal/testutil"
)

func TestFormatTask_Golden(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tasks := []service.Task{
		{ID: uuid.MustParse("3f2a9c1d-0000-4000-8000-000000000001"), Title: "Buy milk", Status: service.StatusTodo, DueDate: &due},
		{ID: uuid.MustParse("a1b2c3d4-0000-4000-8000-000000000002"), Title: "Line one\nline two", Status: service.StatusInProgress},
		{ID: uuid.MustParse("00ff00ff-0000-4000-8000-000000000003"), Title: "   ", Status: service.StatusArchived},
	}

	var buf bytes.Buffer
	for i, task := range tasks {
		FormatTask(&buf, i+1, task)
	}
	testutil.Golden(t, "tasks", buf.Bytes())
}

func TestFormatProfile(t *testing.T) {
	var buf bytes.Buffer
	FormatProfile(&buf, service.UserProfile{
		ID:        uuid.MustParse("11111111-2222-4333-8444-555555555555"),
		FirstName: "Ann",
		Email:     "ann@example.com",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	expected := "name:    Ann\n" +
		"email:   ann@example.com\n" +
		"id:      11111111-2222-4333-8444-555555555555\n" +
		"since:   2024-01-02\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"plain":  "plain",
		"a\r\nb": "a  b",
		"":       "(untitled)",
		" \n ":   "(untitled)",
	}
	for in, want := range cases {
		if got := normalizeTitle(in); got != want {
			t.Errorf("normalizeTitle(%q): expected %q, got %q", in, want, got)
		}
	}
}
