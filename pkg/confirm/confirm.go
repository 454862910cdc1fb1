// Package confirm gates irreversible actions behind an explicit operator yes.
package confirm

import (
	"context"
	"strings"
)

// Decide returns true only when the target exists and response is an explicit yes.
// Anything else, including an empty response, keeps the target.
func Decide(exists bool, response string) bool {
	if !exists {
		return false
	}
	return IsAffirmative(response)
}

func IsAffirmative(response string) bool {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Prompter asks one question and returns one line of input. End of input,
// interruption and timeout all return "" with a nil error.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Fixed answers every question with the same response without reading input.
type Fixed string

func (f Fixed) Ask(context.Context, string) (string, error) { return string(f), nil }

const (
	Yes Fixed = "yes"
	No  Fixed = "no"
)

// Question formats the yes/no prompt for a path. The [y/N] suffix advertises the safe default.
func Question(path string) string {
	return "Remove user data at " + path + "? [y/N]: "
}

type answer struct {
	line string
	err  error
}

// await runs read in the background and gives up when ctx ends. abort, if set,
// is called on give-up to unblock the reader.
func await(ctx context.Context, read func() (string, error), abort func()) (string, error) {
	ch := make(chan answer, 1)
	go func() {
		line, err := read()
		ch <- answer{line: line, err: err}
	}()
	select {
	case a := <-ch:
		return a.line, a.err
	case <-ctx.Done():
		if abort != nil {
			abort()
		}
		return "", nil
	}
}
