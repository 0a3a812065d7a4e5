// Package sessionlog provides a small rotating file logger for the session
// audit trail: each log file keeps only its most recent lines so long-lived
// deployments never grow unbounded debug files.
package sessionlog

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	defaultMaxLines = 30
	separatorWidth  = 50
)

// Logger appends timestamped entries to per-name log files under dir,
// truncating each file to the last maxLines lines on every write.
type Logger struct {
	mu       sync.Mutex
	fs       afero.Fs
	dir      string
	maxLines int
	now      func() time.Time
}

// New creates a session logger rooted at dir. maxLines <= 0 selects the
// default of 30.
func New(fs afero.Fs, dir string, maxLines int) (*Logger, error) {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &Logger{
		fs:       fs,
		dir:      dir,
		maxLines: maxLines,
		now:      time.Now,
	}, nil
}

// SetClock overrides the timestamp source, for tests.
func (l *Logger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Log appends one entry to <dir>/<name>.log. Writes are best-effort: a
// failing audit trail must never break session processing.
func (l *Logger) Log(name, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, name+".log")
	entry := fmt.Sprintf("[%s] %s", l.now().Format("2006-01-02 15:04:05"), message)

	lines := l.readLines(path)

	// Visually separate new sessions and teardowns in the trail.
	if strings.Contains(message, "Initializing") || strings.Contains(message, "Starting cleanup") {
		lines = append(lines, "", strings.Repeat("-", separatorWidth))
	}

	lines = append(lines, entry)
	if len(lines) > l.maxLines {
		lines = lines[len(lines)-l.maxLines:]
	}

	_ = afero.WriteFile(l.fs, path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

func (l *Logger) readLines(path string) []string {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
