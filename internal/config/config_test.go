package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "bamboo")
	t.Setenv("DB_NAME", "portal")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BAMBOO_API_URL", "http://api.bamboo.local/")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://api.bamboo.local", cfg.Bamboo.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Comparator.CompareTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Comparator.WorkspaceTTL)
	assert.Equal(t, 10000, cfg.Comparator.MaxWorkspaces)
	assert.Equal(t, 30*time.Second, cfg.Bamboo.Timeout)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("COMPARE_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://bamboo.ga, https://admin.bamboo.ga")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Comparator.CompareTimeout)
	assert.Equal(t, []string{"https://bamboo.ga", "https://admin.bamboo.ga"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("COMPARE_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "COMPARE_TIMEOUT")
}

func TestLoadRequiresBambooURL(t *testing.T) {
	setRequired(t)
	t.Setenv("BAMBOO_API_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "BAMBOO_API_URL")
}
