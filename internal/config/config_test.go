package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "host=localhost dbname=pm")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("VIEW_CACHE_TTL", "")
	t.Setenv("SETTINGS_DEBOUNCE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.ViewCacheTTL)
	assert.Equal(t, time.Second, cfg.SettingsDebounce)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "host=localhost dbname=pm")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("SETTINGS_DEBOUNCE", "250ms")
	t.Setenv("VIEW_CACHE_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, "jwt", cfg.JWTSecret)
	assert.Equal(t, 250*time.Millisecond, cfg.SettingsDebounce)
	assert.Equal(t, 5*time.Minute, cfg.ViewCacheTTL)
}
