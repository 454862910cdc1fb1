package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a config string to a level. Unknown values fall back to WARN.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "error":
		return ERROR
	default:
		return WARN
	}
}

type Entry struct {
	Level     string                 `json:"level"`
	Timestamp string                 `json:"timestamp"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

type sink struct {
	mu           sync.Mutex
	file         *os.File
	path         string
	maxSizeBytes int64
}

var (
	mu      sync.RWMutex
	level   = WARN
	fileOut = &sink{}

	console io.Writer = os.Stderr
)

func SetLevel(l LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects console lines. A nil writer silences the console.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = io.Discard
	}
	console = w
}

// EnableFileLogging appends JSON lines to path, rotating it once it would exceed maxSizeMB.
func EnableFileLogging(path string, maxSizeMB int) error {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	fileOut.mu.Lock()
	defer fileOut.mu.Unlock()
	if fileOut.file != nil {
		fileOut.file.Close()
	}
	fileOut.file = f
	fileOut.path = path
	fileOut.maxSizeBytes = int64(maxSizeMB) * 1024 * 1024
	return nil
}

func DisableFileLogging() {
	fileOut.mu.Lock()
	defer fileOut.mu.Unlock()
	if fileOut.file != nil {
		fileOut.file.Close()
		fileOut.file = nil
		fileOut.path = ""
		fileOut.maxSizeBytes = 0
	}
}

func logMessage(lvl LogLevel, component, message string, fields map[string]interface{}) {
	mu.RLock()
	threshold, out := level, console
	mu.RUnlock()
	if lvl < threshold {
		return
	}

	entry := Entry{
		Level:     lvl.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Component: component,
		Message:   message,
		Fields:    fields,
	}
	if pc, file, line, ok := runtime.Caller(2); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			entry.Caller = fmt.Sprintf("%s:%d (%s)", filepath.Base(file), line, fn.Name())
		}
	}

	if data, err := json.Marshal(entry); err == nil {
		if err := fileOut.writeLine(append(data, '\n')); err != nil {
			fmt.Fprintln(out, "logger: file write failed:", err)
		}
	}

	var fieldStr string
	if len(fields) > 0 {
		fieldStr = " " + formatFields(fields)
	}
	fmt.Fprintf(out, "[%s] [%s]%s %s%s\n", entry.Timestamp, entry.Level, formatComponent(component), message, fieldStr)
}

func (s *sink) writeLine(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	if s.maxSizeBytes > 0 {
		if err := s.rotateIfNeeded(int64(len(line))); err != nil {
			return err
		}
	}
	_, err := s.file.Write(line)
	return err
}

// rotateIfNeeded keeps a single backup at <path>.1.
func (s *sink) rotateIfNeeded(next int64) error {
	info, err := s.file.Stat()
	if err != nil {
		return err
	}
	if info.Size()+next <= s.maxSizeBytes {
		return nil
	}
	if err := s.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(s.path, s.path+".1"); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		s.file = nil
		return err
	}
	s.file = f
	return nil
}

func formatComponent(component string) string {
	if component == "" {
		return ""
	}
	return fmt.Sprintf(" %s:", component)
}

func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

func DebugCF(component, message string, fields map[string]interface{}) {
	logMessage(DEBUG, component, message, fields)
}

func InfoCF(component, message string, fields map[string]interface{}) {
	logMessage(INFO, component, message, fields)
}

func WarnCF(component, message string, fields map[string]interface{}) {
	logMessage(WARN, component, message, fields)
}

func ErrorCF(component, message string, fields map[string]interface{}) {
	logMessage(ERROR, component, message, fields)
}
