package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: sqlite
  path: saves.db
player:
  tick_interval: 25ms
  autosave_slot: camp
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "saves.db", cfg.Store.Path)
	assert.Equal(t, 25*time.Millisecond, cfg.Player.TickInterval)
	assert.Equal(t, "camp", cfg.Player.AutosaveSlot)
	// Untouched sections keep their defaults.
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "> ", cfg.Player.Cursor)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_UnknownKeyFails(t *testing.T) {
	path := writeConfig(t, "store:\n  drvier: redis\n")
	_, err := Load(path)
	assert.Error(t, err, "strict decoding rejects typoed keys")
}

func TestLoad_DefaultsWhenNothingFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_RedisSection(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: redis
  redis:
    address: localhost:6379
    db: 2
    ttl: 24h
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Address)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
}
