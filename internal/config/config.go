// Package config provides configuration loading and validation for
// the ranking engine's tools. It uses koanf to merge environment
// variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all tunable values for a ranking deployment.
type Config struct {
	// Env names the deployment environment ("development", "production").
	Env string `koanf:"env"`

	// CalibrationPath points at an optional JSON scoring-weight
	// calibration file; empty means built-in defaults.
	CalibrationPath string `koanf:"calibration_path"`

	// SimilarityThreshold gates embedding-targeted candidates.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// TimeWindowDays bounds which candidates are considered at all.
	TimeWindowDays int `koanf:"time_window_days"`

	// FeedLimit is the default ranked page size.
	FeedLimit int `koanf:"feed_limit"`

	// BoostActiveConversations is the onboarding default for the
	// active-discussion scoring term.
	BoostActiveConversations bool `koanf:"boost_active_conversations"`
}

// Configuration validation errors.
var (
	ErrInvalidSimilarityThreshold = errors.New("SIMILARITY_THRESHOLD must be in (0, 1]")
	ErrInvalidTimeWindow          = errors.New("TIME_WINDOW_DAYS must be positive")
	ErrInvalidFeedLimit           = errors.New("FEED_LIMIT must be positive")
)

// Default values for non-secret configuration.
const (
	DefaultEnv                 = "development"
	DefaultSimilarityThreshold = 0.7
	DefaultTimeWindowDays      = 7
	DefaultFeedLimit           = 50
)

// Load reads configuration from environment variables and an optional
// YAML config file. Environment variables take precedence over file
// values. Returns the loaded config and a slice of validation errors
// (empty if valid). If a config file path is provided and the file
// cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	threshold, thresholdErr := getEnvFloatOrDefault("SIMILARITY_THRESHOLD", k.Float64("similarity_threshold"), DefaultSimilarityThreshold)
	if thresholdErr != nil {
		loadErrs = append(loadErrs, thresholdErr)
	}

	windowDays, windowErr := getEnvIntOrDefault("TIME_WINDOW_DAYS", k.Int("time_window_days"), DefaultTimeWindowDays)
	if windowErr != nil {
		loadErrs = append(loadErrs, windowErr)
	}

	feedLimit, limitErr := getEnvIntOrDefault("FEED_LIMIT", k.Int("feed_limit"), DefaultFeedLimit)
	if limitErr != nil {
		loadErrs = append(loadErrs, limitErr)
	}

	boostActive := k.Bool("boost_active_conversations")
	if val := os.Getenv("BOOST_ACTIVE_CONVERSATIONS"); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			boostActive = true
		case "false", "0", "no", "off":
			boostActive = false
		}
	}

	cfg := &Config{
		Env:                      getEnvOrDefault("CHIRP_ENV", k.String("env"), DefaultEnv),
		CalibrationPath:          getEnvOrKoanf("CALIBRATION_PATH", k, "calibration_path"),
		SimilarityThreshold:      threshold,
		TimeWindowDays:           windowDays,
		FeedLimit:                feedLimit,
		BoostActiveConversations: boostActive,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// Validate checks the configuration for out-of-range values and
// returns all violations found.
func (c *Config) Validate() []error {
	var errs []error
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, ErrInvalidSimilarityThreshold)
	}
	if c.TimeWindowDays <= 0 {
		errs = append(errs, ErrInvalidTimeWindow)
	}
	if c.FeedLimit <= 0 {
		errs = append(errs, ErrInvalidFeedLimit)
	}
	return errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault parses an integer environment variable with
// koanf and default fallbacks. An unparsable value is an error.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return defaultVal, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return parsed, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault parses a float environment variable with koanf
// and default fallbacks. An unparsable value is an error.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return defaultVal, fmt.Errorf("%s must be a valid number: %w", envKey, err)
		}
		return parsed, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}
