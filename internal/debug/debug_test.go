package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetForTest(t *testing.T) {
	t.Cleanup(func() {
		Close()
		_ = Init(false, "")
	})
}

func TestInit_Disabled(t *testing.T) {
	resetForTest(t)

	require.NoError(t, Init(false, ""))
	assert.False(t, Enabled())

	// No-ops.
	Log("test message")
	Logf("test %s", "formatted")
}

func TestInit_Enabled(t *testing.T) {
	resetForTest(t)

	logPath := filepath.Join(t.TempDir(), "logs", LogFileName)
	require.NoError(t, Init(true, logPath))
	assert.True(t, Enabled())

	Log("test message")
	Logf("cycle=%s stage=%s", "abc", "check")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "debug log started")
	assert.Contains(t, string(content), "test message")
	assert.Contains(t, string(content), "cycle=abc stage=check")
}

func TestInit_DefaultPath(t *testing.T) {
	resetForTest(t)

	tmpDir := t.TempDir()
	orig := getLogPath
	getLogPath = func() (string, error) {
		return filepath.Join(tmpDir, LogDirName, LogFileName), nil
	}
	t.Cleanup(func() { getLogPath = orig })

	require.NoError(t, Init(true, ""))

	path, err := DefaultLogPath()
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestInit_Truncates(t *testing.T) {
	resetForTest(t)

	logPath := filepath.Join(t.TempDir(), LogFileName)
	require.NoError(t, os.WriteFile(logPath, []byte("stale line\n"), 0600))

	require.NoError(t, Init(true, logPath))
	Close()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale line")
}

func TestInit_BadPath(t *testing.T) {
	resetForTest(t)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	err := Init(true, filepath.Join(blocker, "debug.log"))
	assert.Error(t, err)
	assert.False(t, Enabled())
}
