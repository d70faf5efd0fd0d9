package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.RateLimit)
	assert.Equal(t, 90, cfg.Privacy.DefaultAutoDeleteDays)
	assert.NotEmpty(t, cfg.Security.JWTSecret)
	assert.NotEmpty(t, cfg.Storage.SQLitePath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sepsiscan.yaml")
	content := []byte("server:\n  port: 9090\nalerts:\n  telegram:\n    enabled: true\n    bot_token: tok\n    chat_id: 42\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Alerts.Telegram.Enabled)
	assert.Equal(t, int64(42), cfg.Alerts.Telegram.ChatID)
	assert.Equal(t, path, cfg.Path)
}

func TestValidateRejectsEnabledChannelWithoutToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sepsiscan.yaml")
	content := []byte("alerts:\n  telegram:\n    enabled: true\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := Load(path, dir)
	assert.Error(t, err)
}
