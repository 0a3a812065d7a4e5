package sessionlog

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T, fs afero.Fs, path string) []string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestLogWritesTimestampedEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, err := New(fs, "/logs", 0)
	require.NoError(t, err)
	logger.SetClock(func() time.Time {
		return time.Date(2025, 11, 18, 9, 30, 0, 0, time.UTC)
	})

	logger.Log("agent", "AGENT: Processing: \"hi\"")

	lines := readLog(t, fs, "/logs/agent.log")
	require.Len(t, lines, 1)
	assert.Equal(t, `[2025-11-18 09:30:00] AGENT: Processing: "hi"`, lines[0])
}

func TestLogTruncatesToMaxLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, err := New(fs, "/logs", 5)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		logger.Log("agent", "entry")
	}

	lines := readLog(t, fs, "/logs/agent.log")
	assert.Len(t, lines, 5)
}

func TestLogInsertsSessionSeparator(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, err := New(fs, "/logs", 30)
	require.NoError(t, err)

	logger.Log("agent", "AGENT: Processed: success")
	logger.Log("agent", "AGENT: Initializing new agent session")

	lines := readLog(t, fs, "/logs/agent.log")
	require.Len(t, lines, 4)
	assert.Equal(t, "", lines[1])
	assert.Equal(t, strings.Repeat("-", 50), lines[2])
	assert.Contains(t, lines[3], "Initializing new agent session")
}

func TestSeparateFilesPerName(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, err := New(fs, "/logs", 30)
	require.NoError(t, err)

	logger.Log("agent", "a")
	logger.Log("callback", "b")

	assert.Len(t, readLog(t, fs, "/logs/agent.log"), 1)
	assert.Len(t, readLog(t, fs, "/logs/callback.log"), 1)
}
