// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	matching := cfg.Matching.ToDomain()
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/expensetrace/reconciler/internal/domain/matching"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Matching      MatchingConfig      `yaml:"matching"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MatchingConfig holds the tunable scoring settings. Zero values fall
// back to the domain defaults via ToDomain.
type MatchingConfig struct {
	ExactMatchToleranceDays     int     `yaml:"exact_match_tolerance_days"`
	ProbableMatchToleranceDays  int     `yaml:"probable_match_tolerance_days"`
	AmountTolerancePercentage   float64 `yaml:"amount_tolerance_percentage"`
	MinimumMatchScore           float64 `yaml:"minimum_match_score"`
	AutoAcceptProbableThreshold float64 `yaml:"auto_accept_probable_threshold"`
	AutoAcceptExactThreshold    float64 `yaml:"auto_accept_exact_threshold"`
}

// ToDomain converts the YAML settings into a matching.Config, filling
// unset fields with the defaults.
func (m MatchingConfig) ToDomain() matching.Config {
	cfg := matching.DefaultConfig()
	if m.ExactMatchToleranceDays > 0 {
		cfg.ExactMatchToleranceDays = m.ExactMatchToleranceDays
	}
	if m.ProbableMatchToleranceDays > 0 {
		cfg.ProbableMatchToleranceDays = m.ProbableMatchToleranceDays
	}
	if m.AmountTolerancePercentage > 0 {
		cfg.AmountTolerancePercentage = m.AmountTolerancePercentage
	}
	if m.MinimumMatchScore > 0 {
		cfg.MinimumMatchScore = m.MinimumMatchScore
	}
	if m.AutoAcceptProbableThreshold > 0 {
		cfg.AutoAcceptProbableThreshold = m.AutoAcceptProbableThreshold
	}
	if m.AutoAcceptExactThreshold > 0 {
		cfg.AutoAcceptExactThreshold = m.AutoAcceptExactThreshold
	}
	return cfg
}

// APIConfig holds HTTP server configuration
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECONCILER_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	return &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILER_DB_PATH", "reconciler.db"),
		},
		Matching: MatchingConfig{
			ExactMatchToleranceDays:     getEnvInt("RECONCILER_EXACT_TOLERANCE_DAYS", 0),
			ProbableMatchToleranceDays:  getEnvInt("RECONCILER_PROBABLE_TOLERANCE_DAYS", 0),
			AmountTolerancePercentage:   getEnvFloat("RECONCILER_AMOUNT_TOLERANCE_PCT", 0),
			MinimumMatchScore:           getEnvFloat("RECONCILER_MINIMUM_MATCH_SCORE", 0),
			AutoAcceptProbableThreshold: getEnvFloat("RECONCILER_AUTO_ACCEPT_PROBABLE", 0),
			AutoAcceptExactThreshold:    getEnvFloat("RECONCILER_AUTO_ACCEPT_EXACT", 0),
		},
		API: APIConfig{
			Port:           getEnvInt("RECONCILER_API_PORT", 8080),
			AllowedOrigins: splitList(getEnv("RECONCILER_ALLOWED_ORIGINS", "")),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
