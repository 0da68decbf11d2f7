package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n  shutdown_grace: 2s\nrate_limit:\n  rps: 3\n  burst: 6\n"), 0o600))

	cfg, err := loadConfig([]string{"-addr", ":8000", "-config", path})
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownGrace)
	assert.Equal(t, 3.0, cfg.RateLimit.RPS)
	assert.Equal(t, 6, cfg.RateLimit.Burst)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Addr)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	_, err := loadConfig([]string{"-log-format", "xml"})
	assert.Error(t, err)

	_, err = loadConfig([]string{"--config=" + filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
