package pathenv

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnvFileStore persists variables as KEY=VALUE lines, the environment.d
// format read at user login. Lines it does not own are left untouched.
type EnvFileStore struct {
	Path string
}

func NewEnvFileStore(path string) *EnvFileStore {
	return &EnvFileStore{Path: path}
}

func (s *EnvFileStore) Get(name string) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", s.Path, err)
	}
	value := ""
	for _, line := range strings.Split(string(data), "\n") {
		if a, ok := parseAssignment(line); ok && a.key == name {
			value = a.value
		}
	}
	return value, nil
}

// Set replaces the last assignment of name, or appends one.
func (s *EnvFileStore) Set(name, value string) error {
	data, err := os.ReadFile(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", s.Path, err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}
	last := -1
	var existing assignment
	for i, line := range lines {
		if a, ok := parseAssignment(line); ok && a.key == name {
			last, existing = i, a
		}
	}
	if last >= 0 {
		lines[last] = existing.render(value)
	} else {
		lines = append(lines, name+"="+value)
	}

	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(s.Path), err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.Path, err)
	}
	return nil
}

type assignment struct {
	prefix string // everything up to and including "="
	key    string
	value  string
	quote  string // `"`, `'` or empty
	eol    string // "\r" for CRLF files
}

func (a assignment) render(value string) string {
	return a.prefix + a.quote + value + a.quote + a.eol
}

func parseAssignment(line string) (assignment, bool) {
	var eol string
	if strings.HasSuffix(line, "\r") {
		line, eol = strings.TrimSuffix(line, "\r"), "\r"
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return assignment{}, false
	}
	eq := strings.Index(line, "=")
	if eq < 0 {
		return assignment{}, false
	}
	a := assignment{
		prefix: line[:eq+1],
		key:    strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[:eq]), "export ")),
		value:  line[eq+1:],
		eol:    eol,
	}
	if n := len(a.value); n >= 2 {
		if q := a.value[:1]; (q == `"` || q == `'`) && a.value[n-1:] == q {
			a.value, a.quote = a.value[1:n-1], q
		}
	}
	return a, true
}
