package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, Percentiles{P1: 50, P2: 75, P3: 95, P4: 99}, cfg.Percentiles)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users: 25
duration: 30s
database: runs.db
percentiles:
  p3: 90
`), 0o644))

	cfg, err := Load(New(path))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Users)
	assert.Equal(t, 30*time.Second, cfg.Duration)
	assert.Equal(t, "runs.db", cfg.Database)
	assert.Equal(t, 90.0, cfg.Percentiles.P3)
	assert.Equal(t, 50.0, cfg.Percentiles.P1, "unset percentiles keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "surge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: 5\n"), 0o644))

	t.Setenv("SURGE_USERS", "12")
	t.Setenv("SURGE_PERCENTILES_P4", "99.9")

	cfg, err := Load(New(path))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Users)
	assert.Equal(t, 99.9, cfg.Percentiles.P4)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Error(t, err)
}
