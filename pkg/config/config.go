// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
)

// Config represents the application configuration. Every component receives
// the options it needs at construction; there is no process-wide mutable
// state.
type Config struct {
	// Default data paths
	StructuredPath   string
	UnstructuredPath string
	OutputPath       string
	RegistryPath     string

	// Cleaning settings
	UnknownValue  string
	MaxTextLength int
	DefaultRating int
	DateFormat    string

	// Anomaly scoring settings
	AnomalyThreshold float64
	Contamination    float64
	RandomSeed       int64

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables with defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		StructuredPath:   getEnv("CLEANSE_STRUCTURED_PATH", "data/raw/customer_data.csv"),
		UnstructuredPath: getEnv("CLEANSE_UNSTRUCTURED_PATH", "data/raw/reviews"),
		OutputPath:       getEnv("CLEANSE_OUTPUT_PATH", "data/processed"),
		RegistryPath:     getEnv("CLEANSE_REGISTRY_DB", "report_gen.db"),

		UnknownValue:  getEnv("CLEANSE_UNKNOWN_VALUE", "Unknown"),
		MaxTextLength: getEnvAsInt("CLEANSE_MAX_TEXT_LENGTH", 1000),
		DefaultRating: getEnvAsInt("CLEANSE_DEFAULT_RATING", -1),
		DateFormat:    getEnv("CLEANSE_DATE_FORMAT", "2006-01-02"),

		AnomalyThreshold: getEnvAsFloat("CLEANSE_ANOMALY_THRESHOLD", 2.0),
		Contamination:    getEnvAsFloat("CLEANSE_CONTAMINATION", 0.1),
		RandomSeed:       int64(getEnvAsInt("CLEANSE_RANDOM_SEED", 42)),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid.
func (c *Config) Validate() error {
	if c.UnknownValue == "" {
		return errors.New("unknown-value placeholder cannot be empty")
	}

	if c.MaxTextLength <= 0 {
		return errors.New("max text length must be positive")
	}

	if c.AnomalyThreshold <= 0 {
		return errors.New("anomaly threshold must be positive")
	}

	if c.Contamination <= 0 || c.Contamination >= 1 {
		return errors.New("contamination fraction must be in (0, 1)")
	}

	if c.RegistryPath == "" {
		return errors.New("registry database path is required")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
