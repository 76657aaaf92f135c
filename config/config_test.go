package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := values[k]
		return v, ok
	}
}

func TestDefaultNeedsAPIKey(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.LLM.APIKey")

	cfg.LLM.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.LLM.Provider = "scripted"
	cfg.LLM.Model = ""
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(env(map[string]string{
		"GEMINI_API_KEY":       "gemini-key",
		"OPENAI_API_KEY":       "openai-key",
		"BUREAUBOT_ADDR":       ":9000",
		"BUREAUBOT_REDIS_ADDR": "localhost:6379",
	}))
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "localhost:6379", cfg.Session.RedisAddr)

	cfg = Default()
	cfg.applyEnv(env(map[string]string{
		"BUREAUBOT_LLM_PROVIDER":    "openai",
		"OPENAI_API_KEY":            "openai-key",
		"BUREAUBOT_REDIS_ADDR":      "localhost:6379",
		"BUREAUBOT_SESSION_BACKEND": "memory",
	}))
	assert.Equal(t, "openai-key", cfg.LLM.APIKey)
	assert.Equal(t, "memory", cfg.Session.Backend)

	cfg = Default()
	cfg.applyEnv(env(map[string]string{"BUREAUBOT_LLM_API_KEY": "explicit", "GEMINI_API_KEY": "fallback"}))
	assert.Equal(t, "explicit", cfg.LLM.APIKey)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("BUREAUBOT_LLM_API_KEY", "from-env")
	t.Setenv("BUREAUBOT_ADDR", "")
	t.Setenv("BUREAUBOT_REDIS_ADDR", "")
	path := filepath.Join(t.TempDir(), "bureaubot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8181"
  turn_timeout: 30s
llm:
  provider: gemini
  model: gemini-2.0-flash
session:
  ttl: 45m
forms:
  metadata_dir: /srv/metadata
log:
  level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.TurnTimeout)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "/srv/metadata", cfg.Forms.MetadataDir)
	assert.Equal(t, "output", cfg.Forms.OutputDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.LLM.Attempts)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("BUREAUBOT_LLM_API_KEY", "k")
	t.Setenv("BUREAUBOT_REDIS_ADDR", "")
	t.Setenv("BUREAUBOT_SESSION_BACKEND", "")
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  backend: redis\nllm:\n  provider: claude\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Session.RedisAddr")
	assert.Contains(t, err.Error(), "Config.LLM.Provider")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
