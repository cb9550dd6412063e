package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wahaj323/quizengine/internal/config"
)

func TestNew_TeesFileAndConsole(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "quizengine.log")
	var console bytes.Buffer

	log, err := New(config.LogConfig{Level: "info", File: file, MaxSizeMB: 1}, &console)
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("attempt graded", zap.Int("score", 75))
	require.NoError(t, log.Sync())

	assert.Contains(t, console.String(), "attempt graded")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "attempt graded", entry["msg"])
	assert.EqualValues(t, 75, entry["score"])
}

func TestNew_FileOnly(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tui.log")
	log, err := New(config.LogConfig{Level: "debug", File: file}, nil)
	require.NoError(t, err)
	log.Debug("tick")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tick"`)
}

func TestNew_NoDestination(t *testing.T) {
	log, err := New(config.LogConfig{Level: "info"}, nil)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.ErrorLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"}, nil)
	assert.Error(t, err)
}
