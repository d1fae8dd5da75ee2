package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8002", cfg.APIBaseURL)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.ConsulAddr)
	assert.Equal(t, ":8002", cfg.DevserverAddr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COFFEESHOP_API_URL", "http://api.internal:9000")
	t.Setenv("COFFEESHOP_PAGE_SIZE", "20")
	t.Setenv("COFFEESHOP_HTTP_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal:9000", cfg.APIBaseURL)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("COFFEESHOP_PAGE_SIZE", "zero")
	_, err := Load()
	assert.Error(t, err)
}

func TestResolveWithoutConsulUsesStaticURL(t *testing.T) {
	cfg := Config{APIBaseURL: "http://localhost:8002"}
	url, err := cfg.ResolveAPIBaseURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8002", url)
}
