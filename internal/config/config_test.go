package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "docker", cfg.ComposeBin)

	dev, err := cfg.Environment("dev")
	require.NoError(t, err)
	assert.Equal(t, "docker/docker-compose.dev.yml", dev.ComposeFile)
	assert.Equal(t, []string{"dashboard", "mongo"}, dev.Services)
	assert.True(t, dev.Probe)

	prod, err := cfg.Environment("prod")
	require.NoError(t, err)
	assert.Contains(t, prod.Services, "caddy")

	assert.Equal(t, "http://localhost:7777", cfg.Probe.DashboardURL)
	assert.Equal(t, 8000, cfg.Docs.Port)
	assert.Equal(t, "8989", cfg.Server.Port)
}

func TestEnvironmentUnknown(t *testing.T) {
	cfg := DefaultConfig()

	_, err := cfg.Environment("staging")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown environment: staging")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.EnvFile = ".env.local"
	cfg.Environments["staging"] = EnvironmentConfig{
		ComposeFile: "docker/docker-compose.staging.yml",
		Services:    []string{"dashboard"},
	}

	require.NoError(t, cfg.Save(path))
	assert.True(t, Exists(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".env.local", loaded.EnvFile)

	staging, err := loaded.Environment("staging")
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard"}, staging.Services)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environments: [not a map"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadDefaultsComposeBin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "docker", cfg.ComposeBin)
}

func TestExists(t *testing.T) {
	assert.False(t, Exists(filepath.Join(t.TempDir(), "nope.yaml")))
}
