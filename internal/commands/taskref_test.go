package commands

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseTaskRef(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-5b7d-4e21-9a0c-1d2e3f405162")

	tests := []struct {
		name    string
		args    []string
		want    TaskRef
		wantErr string
	}{
		{"number", []string{"3"}, TaskRef{Num: 3}, ""},
		{"number with extra args", []string{"12", "x"}, TaskRef{Num: 12}, ""},
		{"full id", []string{id.String()}, TaskRef{ID: id}, ""},
		{"upper-case id", []string{"3F2A9C1E-5B7D-4E21-9A0C-1D2E3F405162"}, TaskRef{ID: id}, ""},
		{"prefix", []string{"3f2a9c1e"}, TaskRef{Prefix: "3f2a9c1e"}, ""},
		{"prefix is lowered", []string{"3F2A"}, TaskRef{Prefix: "3f2a"}, ""},
		{"no args", nil, TaskRef{}, "task reference required"},
		{"blank", []string{"  "}, TaskRef{}, "task reference required"},
		{"zero", []string{"0"}, TaskRef{}, "task number out of range: 0"},
		{"short prefix", []string{"3fa"}, TaskRef{}, "invalid task reference: 3fa"},
		{"not hex", []string{"milk"}, TaskRef{}, "invalid task reference: milk"},
		{"letter ref", []string{"a1"}, TaskRef{}, "invalid task reference: a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTaskRef(tt.args)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("expected error %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Num != tt.want.Num || got.ID != tt.want.ID || got.Prefix != tt.want.Prefix {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRegistry_DuplicateNames(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&RmCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&RmCmd{}); err == nil || err.Error() != "command already registered: rm" {
		t.Errorf("expected duplicate name error, got %v", err)
	}

	r = NewRegistry()
	if err := r.Register(&ShowCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&aliasCmd{ShowCmd{}}); err == nil || err.Error() != "command alias already registered: show" {
		t.Errorf("expected duplicate alias error, got %v", err)
	}
}

func TestRegistry_AllSortedByName(t *testing.T) {
	r := NewRegistry()
	for _, c := range []Command{&VersionCmd{}, &AddCmd{}, &ListCmd{}} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	want := []string{"add", "list", "version"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
		}
	}

	if c, ok := r.Find("ls"); !ok || c.Name() != "list" {
		t.Errorf("expected alias ls to find list")
	}
}

// aliasCmd is a command whose alias collides with "show".
type aliasCmd struct{ ShowCmd }

func (c *aliasCmd) Name() string      { return "display" }
func (c *aliasCmd) Aliases() []string { return []string{"show"} }
