package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "reconciler.db"
matching:
  exact_match_tolerance_days: 3
  minimum_match_score: 0.65
api:
  port: 9090
  allowed_origins:
    - "http://localhost:3000"
observability:
  logging:
    level: "debug"
`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "reconciler.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 3, cfg.Matching.ExactMatchToleranceDays)
	assert.Equal(t, 0.65, cfg.Matching.MinimumMatchScore)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("RECONCILER_DB_PATH", "test.db")
	os.Setenv("RECONCILER_API_PORT", "9999")
	os.Setenv("RECONCILER_MINIMUM_MATCH_SCORE", "0.75")
	defer func() {
		os.Unsetenv("RECONCILER_DB_PATH")
		os.Unsetenv("RECONCILER_API_PORT")
		os.Unsetenv("RECONCILER_MINIMUM_MATCH_SCORE")
	}()

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9999, cfg.API.Port)
	assert.Equal(t, 0.75, cfg.Matching.MinimumMatchScore)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("RECONCILER_DB_PATH")
	os.Unsetenv("RECONCILER_API_PORT")

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "reconciler.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	os.Setenv("RECONCILER_DB_PATH", "fallback.db")
	defer os.Unsetenv("RECONCILER_DB_PATH")

	cfg := LoadOrEnvWithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "${TEST_DB_PATH}"
`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	os.Setenv("TEST_DB_PATH", "expanded.db")
	defer os.Unsetenv("TEST_DB_PATH")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
}

func TestMatchingConfigToDomain(t *testing.T) {
	// Zero values fall back to the domain defaults
	cfg := MatchingConfig{}.ToDomain()
	assert.Equal(t, 2, cfg.ExactMatchToleranceDays)
	assert.Equal(t, 7, cfg.ProbableMatchToleranceDays)
	assert.Equal(t, 0.01, cfg.AmountTolerancePercentage)
	assert.Equal(t, 0.7, cfg.MinimumMatchScore)
	assert.Equal(t, 0.85, cfg.AutoAcceptProbableThreshold)
	assert.Equal(t, 0.95, cfg.AutoAcceptExactThreshold)

	// Set values override the defaults
	cfg = MatchingConfig{
		ExactMatchToleranceDays: 1,
		MinimumMatchScore:       0.6,
	}.ToDomain()
	assert.Equal(t, 1, cfg.ExactMatchToleranceDays)
	assert.Equal(t, 0.6, cfg.MinimumMatchScore)
	assert.Equal(t, 7, cfg.ProbableMatchToleranceDays)
}
