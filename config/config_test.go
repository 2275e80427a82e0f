package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, 1000, cfg.MaxConnections)
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, 1024, cfg.WriteBufferSize)
	assert.False(t, cfg.Bridge)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ROOMCAST_ADDR", ":9000")
	t.Setenv("ROOMCAST_MAX_CONNECTIONS", "5")
	t.Setenv("ROOMCAST_BRIDGE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 5, cfg.MaxConnections)
	assert.True(t, cfg.Bridge)
	assert.Equal(t, 1024, cfg.ReadBufferSize)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("ROOMCAST_MAX_CONNECTIONS", "many")
	_, err := Load()
	assert.Error(t, err)
}
