package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv() {
	os.Unsetenv("CHIRP_ENV")
	os.Unsetenv("CALIBRATION_PATH")
	os.Unsetenv("SIMILARITY_THRESHOLD")
	os.Unsetenv("TIME_WINDOW_DAYS")
	os.Unsetenv("FEED_LIMIT")
	os.Unsetenv("BOOST_ACTIVE_CONVERSATIONS")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()
	defer clearEnv()

	cfg, errs := Load("")
	if len(errs) != 0 {
		t.Fatalf("Load() returned errors: %v", errs)
	}

	if cfg.Env != DefaultEnv {
		t.Errorf("Env = %s, want %s", cfg.Env, DefaultEnv)
	}
	if cfg.SimilarityThreshold != DefaultSimilarityThreshold {
		t.Errorf("SimilarityThreshold = %v, want %v", cfg.SimilarityThreshold, DefaultSimilarityThreshold)
	}
	if cfg.TimeWindowDays != DefaultTimeWindowDays {
		t.Errorf("TimeWindowDays = %d, want %d", cfg.TimeWindowDays, DefaultTimeWindowDays)
	}
	if cfg.FeedLimit != DefaultFeedLimit {
		t.Errorf("FeedLimit = %d, want %d", cfg.FeedLimit, DefaultFeedLimit)
	}
	if cfg.BoostActiveConversations {
		t.Error("BoostActiveConversations should default to false")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv()
	defer clearEnv()

	os.Setenv("CHIRP_ENV", "production")
	os.Setenv("SIMILARITY_THRESHOLD", "0.85")
	os.Setenv("TIME_WINDOW_DAYS", "14")
	os.Setenv("FEED_LIMIT", "25")
	os.Setenv("BOOST_ACTIVE_CONVERSATIONS", "true")
	os.Setenv("CALIBRATION_PATH", "/etc/chirpfeed/calibration.json")

	cfg, errs := Load("")
	if len(errs) != 0 {
		t.Fatalf("Load() returned errors: %v", errs)
	}

	if cfg.Env != "production" {
		t.Errorf("Env = %s, want production", cfg.Env)
	}
	if cfg.SimilarityThreshold != 0.85 {
		t.Errorf("SimilarityThreshold = %v, want 0.85", cfg.SimilarityThreshold)
	}
	if cfg.TimeWindowDays != 14 {
		t.Errorf("TimeWindowDays = %d, want 14", cfg.TimeWindowDays)
	}
	if cfg.FeedLimit != 25 {
		t.Errorf("FeedLimit = %d, want 25", cfg.FeedLimit)
	}
	if !cfg.BoostActiveConversations {
		t.Error("BoostActiveConversations should be true")
	}
	if cfg.CalibrationPath != "/etc/chirpfeed/calibration.json" {
		t.Errorf("CalibrationPath = %s", cfg.CalibrationPath)
	}
}

func TestLoad_InvalidEnvValues(t *testing.T) {
	clearEnv()
	defer clearEnv()

	os.Setenv("SIMILARITY_THRESHOLD", "not-a-number")
	os.Setenv("TIME_WINDOW_DAYS", "soon")

	cfg, errs := Load("")
	if len(errs) != 2 {
		t.Fatalf("expected 2 parse errors, got %d: %v", len(errs), errs)
	}

	// Unparsable values fall back to defaults.
	if cfg.SimilarityThreshold != DefaultSimilarityThreshold {
		t.Errorf("SimilarityThreshold = %v, want default", cfg.SimilarityThreshold)
	}
	if cfg.TimeWindowDays != DefaultTimeWindowDays {
		t.Errorf("TimeWindowDays = %d, want default", cfg.TimeWindowDays)
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	clearEnv()
	defer clearEnv()

	yamlContent := `env: staging
calibration_path: /etc/chirpfeed/calibration.json
similarity_threshold: 0.6
time_window_days: 3
feed_limit: 20
boost_active_conversations: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, errs := Load(path)
	if len(errs) != 0 {
		t.Fatalf("Load() returned errors: %v", errs)
	}

	if cfg.Env != "staging" {
		t.Errorf("Env = %s, want staging", cfg.Env)
	}
	if cfg.SimilarityThreshold != 0.6 {
		t.Errorf("SimilarityThreshold = %v, want 0.6", cfg.SimilarityThreshold)
	}
	if cfg.TimeWindowDays != 3 {
		t.Errorf("TimeWindowDays = %d, want 3", cfg.TimeWindowDays)
	}
	if cfg.FeedLimit != 20 {
		t.Errorf("FeedLimit = %d, want 20", cfg.FeedLimit)
	}
	if !cfg.BoostActiveConversations {
		t.Error("BoostActiveConversations should be true")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv()
	defer clearEnv()

	yamlContent := `env: staging
similarity_threshold: 0.6
feed_limit: 20
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatal(err)
	}

	os.Setenv("SIMILARITY_THRESHOLD", "0.9")

	cfg, errs := Load(path)
	if len(errs) != 0 {
		t.Fatalf("Load() returned errors: %v", errs)
	}

	if cfg.SimilarityThreshold != 0.9 {
		t.Errorf("SimilarityThreshold = %v, want 0.9 (env over file)", cfg.SimilarityThreshold)
	}
	if cfg.Env != "staging" {
		t.Errorf("Env = %s, want staging (from file)", cfg.Env)
	}
	if cfg.FeedLimit != 20 {
		t.Errorf("FeedLimit = %d, want 20 (from file)", cfg.FeedLimit)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv()
	defer clearEnv()

	if _, errs := Load(filepath.Join(t.TempDir(), "missing.yaml")); len(errs) == 0 {
		t.Error("expected an error for a missing config file")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErrs    int
		checkForErr error
	}{
		{
			name: "valid config",
			config: Config{
				SimilarityThreshold: 0.7,
				TimeWindowDays:      7,
				FeedLimit:           50,
			},
			wantErrs: 0,
		},
		{
			name:     "zero config has all errors",
			config:   Config{},
			wantErrs: 3,
		},
		{
			name: "threshold above one",
			config: Config{
				SimilarityThreshold: 1.5,
				TimeWindowDays:      7,
				FeedLimit:           50,
			},
			wantErrs:    1,
			checkForErr: ErrInvalidSimilarityThreshold,
		},
		{
			name: "negative window",
			config: Config{
				SimilarityThreshold: 0.7,
				TimeWindowDays:      -1,
				FeedLimit:           50,
			},
			wantErrs:    1,
			checkForErr: ErrInvalidTimeWindow,
		},
		{
			name: "zero feed limit",
			config: Config{
				SimilarityThreshold: 0.7,
				TimeWindowDays:      7,
			},
			wantErrs:    1,
			checkForErr: ErrInvalidFeedLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.config.Validate()
			if len(errs) != tt.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}

			if tt.checkForErr != nil {
				found := false
				for _, err := range errs {
					if errors.Is(err, tt.checkForErr) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Validate() missing expected error %v, got %v", tt.checkForErr, errs)
				}
			}
		})
	}
}
