package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 1.0, cfg.Fare.PeakMultiplier)
	assert.Equal(t, 5*time.Second, cfg.Mapbox.Timeout)
	assert.False(t, cfg.Mapbox.Enabled())
	assert.Equal(t, "content-cache-invalidators", cfg.Worker.ConsumerGroup)
}

func TestLoadFile_ReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "API_PORT=9090\nSTORE_DRIVER=memory\nCACHE_DRIVER=memory\nFARE_PEAK_MULTIPLIER=1.5\nMAPBOX_ACCESS_TOKEN=pk.test\nDB_APPLY_RLS_ROLE=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 1.5, cfg.Fare.PeakMultiplier)
	assert.Equal(t, 1.0, cfg.Fare.OffPeakMultiplier)
	assert.True(t, cfg.Mapbox.Enabled())
	assert.True(t, cfg.Database.ApplyRLSRole)
}

func TestLoadFile_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_BURST", "10")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadFile_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}
