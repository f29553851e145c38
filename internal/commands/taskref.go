package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// minPrefixLen is the shortest ID prefix accepted as a task reference.
const minPrefixLen = 4

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num    int       // 1-based position in the default listing, 0 if unset
	ID     uuid.UUID // full task ID, uuid.Nil if unset
	Prefix string    // leading ID characters, "" if unset
	raw    string
}

// String returns the reference as the user typed it.
func (r TaskRef) String() string { return r.raw }

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. All digits → position in the default listing (created, ascending)
// 2. A full UUID → that task
// 3. At least minPrefixLen hex digits or dashes → unique ID prefix, as
//    printed by list
// 4. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	raw := strings.TrimSpace(args[0])

	if isAllDigits(raw) {
		num, err := strconv.Atoi(raw)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %s", raw)
		}
		return TaskRef{Num: num, raw: raw}, nil
	}

	if id, err := uuid.Parse(raw); err == nil {
		return TaskRef{ID: id, raw: raw}, nil
	}

	if len(raw) >= minPrefixLen && isIDPrefix(raw) {
		return TaskRef{Prefix: strings.ToLower(raw), raw: raw}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", raw)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isIDPrefix(s string) bool {
	for _, r := range s {
		if r != '-' && !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return false
		}
	}
	return true
}
