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

	assert.Equal(t, "proxy.pac", cfg.Script.Path)
	assert.Equal(t, 4, cfg.Script.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DNS.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PAC_SCRIPT", "/etc/corp.pac")
	t.Setenv("PAC_SCRIPT_NAME", "corp")
	t.Setenv("PAC_POOL_SIZE", "16")
	t.Setenv("PAC_DNS_TIMEOUT", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/corp.pac", cfg.Script.Path)
	assert.Equal(t, "corp", cfg.Script.Name)
	assert.Equal(t, 16, cfg.Script.PoolSize)
	assert.Equal(t, 250*time.Millisecond, cfg.DNS.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("PAC_POOL_SIZE", "not-a-number")

	cfg := LoadOrDefault()
	assert.Equal(t, Default(), cfg)
}
