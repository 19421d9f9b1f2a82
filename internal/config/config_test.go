package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, int64(0), cfg.Import.MaxArchiveBytes)
	assert.Equal(t, 8, cfg.Import.MaxParallel)
	assert.Empty(t, cfg.Import.Exclude)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, 8, cfg.Import.MaxParallel)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"IMPORT_MAX_ARCHIVE_BYTES": "1048576",
		"IMPORT_MAX_PARALLEL":      "2",
		"IMPORT_EXCLUDE":           "*.tmp,**/*.bak",
		"LOG_LEVEL":                "debug",
		"LOG_DEV":                  "true",
	}
	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(1048576), cfg.Import.MaxArchiveBytes)
	assert.Equal(t, 2, cfg.Import.MaxParallel)
	assert.Equal(t, []string{"*.tmp", "**/*.bak"}, cfg.Import.Exclude)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, err)
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Import.MaxParallel)
}
