package config

import (
	"os"
	"runtime"
	"strconv"

	"xlmhg/adapters/stats/direct"
	"xlmhg/adapters/stats/mhg"
	"xlmhg/domain/stats"
	"xlmhg/internal"
	"xlmhg/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Test    TestConfig
	Batch   BatchConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// TestConfig holds the defaults of the XL-mHG test
type TestConfig struct {
	Tol       float64
	Algorithm stats.Algorithm
	Policy    stats.ExactPolicy
	Backend   string
}

// BatchConfig holds concurrent batch settings
type BatchConfig struct {
	Workers int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level internal.LogLevel
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	testConfig, err := loadTestConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load test configuration")
	}
	config.Test = *testConfig

	config.Batch = BatchConfig{
		Workers: getEnvIntOrDefault("XLMHG_WORKERS", runtime.NumCPU()),
	}
	config.Server = ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}

	level, ok := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if !ok {
		return nil, errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
	}
	config.Logging = LoggingConfig{Level: level}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadTestConfig() (*TestConfig, error) {
	alg, err := stats.ParseAlgorithm(getEnvOrDefault("XLMHG_ALGORITHM", "alg2"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	policy, err := stats.ParseExactPolicy(getEnvOrDefault("XLMHG_EXACT_PVAL", "always"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	tol := stats.DefaultTol
	if value := os.Getenv("XLMHG_TOL"); value != "" {
		if tol, err = strconv.ParseFloat(value, 64); err != nil {
			return nil, errors.ConfigInvalid("XLMHG_TOL is not a number: " + value)
		}
	}
	return &TestConfig{
		Tol:       tol,
		Algorithm: alg,
		Policy:    policy,
		Backend:   getEnvOrDefault("XLMHG_BACKEND", mhg.EngineName),
	}, nil
}

func validateConfig(config *Config) error {
	if err := stats.ValidateTol(config.Test.Tol); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	switch config.Test.Backend {
	case mhg.EngineName, direct.EngineName:
	default:
		return errors.ConfigInvalid("XLMHG_BACKEND must be " + mhg.EngineName + " or " + direct.EngineName)
	}
	if config.Batch.Workers < 1 {
		return errors.ConfigInvalid("XLMHG_WORKERS must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
