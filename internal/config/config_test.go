package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "deepseek", cfg.AIProvider)
	assert.Equal(t, "https://api.deepseek.com", cfg.DeepSeek.BaseURL)
	assert.Equal(t, "deepseek-chat", cfg.DeepSeek.Model)
	assert.NotEmpty(t, cfg.SystemPrompt)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"http_addr: \":9999\"\ntoken_ttl: 24h\ndeepseek:\n  model: deepseek-reasoner\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "deepseek-reasoner", cfg.DeepSeek.Model)
}
