package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.FastModel)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.StrongModel)
	assert.Equal(t, "https://s.jina.ai", cfg.Search.BaseURL)
	assert.True(t, cfg.Fetch.RenderEnabled)
	assert.Equal(t, 10, cfg.Fetch.TimeoutSecs)
	assert.InDelta(t, 1.0, cfg.Fetch.PerHostPerSec, 0.001)
	assert.Equal(t, 1000, cfg.Fetch.InterFetchWaitMs)
	assert.Equal(t, 3, cfg.Research.MaxConcurrent)
	assert.Equal(t, 3, cfg.Validation.MaxConcurrent)
	assert.Equal(t, "diligence.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
log:
  level: debug
  format: console
store:
  path: /tmp/test.db
research:
  max_concurrent: 5
fetch:
  render_enabled: false
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/tmp/test.db", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Research.MaxConcurrent)
	assert.False(t, cfg.Fetch.RenderEnabled)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Validation.MaxConcurrent)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("DILIGENCE_ANTHROPIC_KEY", "sk-test")
	t.Setenv("DILIGENCE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadBadYAML(t *testing.T) {
	chtemp(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte("{not yaml"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}

func TestConfigFileInSubdirIgnored(t *testing.T) {
	chtemp(t)
	require.NoError(t, os.MkdirAll("sub", 0755))
	require.NoError(t, os.WriteFile(filepath.Join("sub", "config.yaml"), []byte("log:\n  level: debug\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}
