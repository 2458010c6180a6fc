package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"workspace_dir": "projects",
		"model": "gemini-2.0-flash",
		"stuck_tolerance_bytes": 50,
		"max_fix_attempts": 6
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "projects", cfg.WorkspaceDir)
	assert.Equal(t, 50, cfg.StuckToleranceBytes)
	assert.Equal(t, 6, cfg.MaxFixAttempts)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model": `), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestConfig_Validate_RangeChecks(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())

	cfg.DevPort = 80 // below the unprivileged range
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DevPort")

	cfg = Defaults()
	cfg.MaxFixAttempts = 100
	require.Error(t, cfg.Validate())
}

func TestConfig_MergeWithDefaults(t *testing.T) {
	cfg := Config{Model: "gemini-2.5-pro", MaxFixAttempts: 2}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "gemini-2.5-pro", merged.Model)
	assert.Equal(t, 2, merged.MaxFixAttempts)
	assert.Equal(t, 30, merged.StuckToleranceBytes)
	assert.Equal(t, 350, merged.ThinWrapperChars)
	assert.Equal(t, 400, merged.MinComponentBytes)
	assert.Equal(t, 5173, merged.DevPort)
	assert.Equal(t, "generated_projects", merged.WorkspaceDir)
}

func TestConfig_TimeoutAccessors(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 420*time.Second, cfg.InstallTimeout())
	assert.Equal(t, 120*time.Second, cfg.BuildTimeout())
	assert.Equal(t, 60*time.Second, cfg.VerifyTimeout())
}
