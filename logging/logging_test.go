package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	conf := DefaultConfig()
	conf.File = filepath.Join(dir, "bureaubot.log")
	conf.JSONConsole = true

	var console bytes.Buffer
	logger, closer := New(conf, &console)
	logger.Debug("Hidden")
	logger.Info("Turn handled", "session_id", "s1", "stage", "fill_fields")
	require.NoError(t, closer())

	line := bytes.TrimSpace(console.Bytes())
	entry := map[string]any{}
	require.NoError(t, sonic.Unmarshal(line, &entry), string(line))
	assert.Equal(t, "Turn handled", entry["msg"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.NotContains(t, console.String(), "Hidden")

	data, err := os.ReadFile(conf.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage":"fill_fields"`)
}

func TestNewConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, closer := New(Config{Level: "warn"}, &console)
	logger.Info("quiet")
	logger.Warn("Loud", "k", 1)
	require.NoError(t, closer())
	assert.NotContains(t, console.String(), "quiet")
	assert.Contains(t, console.String(), "WARN")
	assert.Contains(t, console.String(), "Loud")
}
