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

	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, 8090, cfg.ServerPort)
	assert.Equal(t, 2, cfg.FetchRetries)
	assert.Equal(t, 40, cfg.DefaultMaxItems)
	assert.Equal(t, 1000, cfg.DefaultMaxLinks)
	assert.True(t, cfg.Headless)
	assert.Contains(t, cfg.BrowseURL, "depop.com")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FITSEEK_PORT", "9000")
	t.Setenv("FITSEEK_HEADLESS", "false")
	t.Setenv("FITSEEK_FETCH_RETRIES", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 1, cfg.FetchRetries)
}

func TestValidateClampsRetries(t *testing.T) {
	t.Setenv("FITSEEK_FETCH_RETRIES", "99")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.FetchRetries)
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Setenv("FITSEEK_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateClampsRateLimit(t *testing.T) {
	cfg := &Config{
		ServerPort:      8090,
		BrowseURL:       "https://www.depop.com/ca/category/mens/tops/",
		FetchRateLimit:  -1,
		FetchRateBurst:  0,
		FetchBackoff:    0,
		NavigateTimeout: time.Second,
	}
	require.NoError(t, validateConfig(cfg))

	assert.Equal(t, 1.0, cfg.FetchRateLimit)
	assert.Equal(t, 1, cfg.FetchRateBurst)
	assert.Equal(t, 750*time.Millisecond, cfg.FetchBackoff)
	assert.Equal(t, 5*time.Second, cfg.NavigateTimeout)
}

func TestValidateRejectsEmptyBrowseURL(t *testing.T) {
	cfg := &Config{ServerPort: 8090, BrowseURL: "  "}
	require.Error(t, validateConfig(cfg))
}
