// Package pathenv removes a directory from a persisted, delimiter-separated
// PATH-style variable. Filtering is pure; persistence goes through Store.
package pathenv

import (
	"os"
	"runtime"
	"strings"
)

// Store reads and writes one named, user-scoped variable.
// Get returns "" with a nil error when the variable is not set.
type Store interface {
	Get(name string) (string, error)
	Set(name, value string) error
}

// Matcher decides whether a PATH segment refers to the install dir.
type Matcher func(segment, dir string) bool

// Exact compares byte for byte.
func Exact(segment, dir string) bool { return segment == dir }

// FoldCase compares ignoring case, the convention for Windows paths.
func FoldCase(segment, dir string) bool { return strings.EqualFold(segment, dir) }

// PlatformMatcher returns FoldCase on Windows and Exact elsewhere.
// Neither trims trailing separators: "C:\psmux\" does not match "C:\psmux".
func PlatformMatcher() Matcher {
	if runtime.GOOS == "windows" {
		return FoldCase
	}
	return Exact
}

// Split returns the raw segments of value. An empty value is an empty list;
// empty segments inside a non-empty value are kept.
func Split(value string, sep rune) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, string(sep))
}

func Join(segments []string, sep rune) string {
	return strings.Join(segments, string(sep))
}

// Filter drops every segment matching dir and keeps the rest verbatim and in order.
// removed is the number of dropped segments.
func Filter(segments []string, dir string, match Matcher) (kept []string, removed int) {
	kept = make([]string, 0, len(segments))
	for _, s := range segments {
		if match(s, dir) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	return kept, removed
}

// Without is Split, Filter and Join in one step. When dir never appeared the
// returned value is value itself.
func Without(value, dir string, sep rune, match Matcher) (result string, removed int) {
	kept, removed := Filter(Split(value, sep), dir, match)
	if removed == 0 {
		return value, 0
	}
	return Join(kept, sep), removed
}

// Contains reports whether any segment of value matches dir.
func Contains(value, dir string, sep rune, match Matcher) bool {
	for _, s := range Split(value, sep) {
		if match(s, dir) {
			return true
		}
	}
	return false
}

// ListSeparator is the platform path-list delimiter.
const ListSeparator = os.PathListSeparator

// Outcome describes what Remove did to the store.
type Outcome struct {
	Before  string
	After   string
	Removed int
	Written bool
}

// Remove drops dir from the variable name in store. The write is skipped when
// nothing matched, so repeating the call is a no-op.
func Remove(store Store, name, dir string, sep rune, match Matcher) (Outcome, error) {
	before, err := store.Get(name)
	if err != nil {
		return Outcome{}, err
	}
	after, removed := Without(before, dir, sep, match)
	out := Outcome{Before: before, After: after, Removed: removed}
	if removed == 0 {
		return out, nil
	}
	if err := store.Set(name, out.After); err != nil {
		return out, err
	}
	out.Written = true
	return out, nil
}

// Plan reports what Remove would do without writing.
func Plan(store Store, name, dir string, sep rune, match Matcher) (Outcome, error) {
	before, err := store.Get(name)
	if err != nil {
		return Outcome{}, err
	}
	after, removed := Without(before, dir, sep, match)
	return Outcome{Before: before, After: after, Removed: removed}, nil
}
