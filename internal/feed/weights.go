package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Weights holds the scoring term constants. All terms are additive and
// independent; calibration may tune any of them at deploy time without
// code changes.
type Weights struct {
	// Following term weights per tier (FollowNone contributes 0).
	FollowLight  float64 `json:"follow_light"`
	FollowMedium float64 `json:"follow_medium"`
	FollowHeavy  float64 `json:"follow_heavy"`

	// Interest term: base added on any semantic-topic match, plus a
	// per-match bonus capped at InterestBonusCap.
	InterestBase     float64 `json:"interest_base"`
	InterestPerMatch float64 `json:"interest_per_match"`
	InterestBonusCap float64 `json:"interest_bonus_cap"`

	// Primary-topic preference terms. MutedTopicPenalty is negative and
	// only matters in relaxed-eligibility passes.
	LikedTopic        float64 `json:"liked_topic"`
	MutedTopicPenalty float64 `json:"muted_topic_penalty"`

	// Active-discussion term: log10(comments+1) * Scale, capped.
	ActiveDiscussionScale float64 `json:"active_discussion_scale"`
	ActiveDiscussionCap   float64 `json:"active_discussion_cap"`

	// Semantic-similarity term multiplier.
	SimilarityScale float64 `json:"similarity_scale"`

	// Recency term: max(0, RecencyBase - hours * RecencyDecayPerHour).
	RecencyBase         float64 `json:"recency_base"`
	RecencyDecayPerHour float64 `json:"recency_decay_per_hour"`
}

// CalibrationConfig is the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight overrides
}

// DefaultWeights returns the production scoring constants.
//
// Following tiers: light 10, medium 30, heavy 50 (monotonic, so raising
// the tier strictly increases a followed author's score). Interest
// matches add 30 plus 5 per match capped at +25 (55 max). Liked primary
// topic adds 25; muted adds -100. Active discussions add up to 20 on a
// log10 curve. Embedding similarity scales to 35 at similarity 1.0.
// Recency starts at 15 and decays 0.5/hour, reaching zero at 30 hours.
func DefaultWeights() *Weights {
	return &Weights{
		FollowLight:           10,
		FollowMedium:          30,
		FollowHeavy:           50,
		InterestBase:          30,
		InterestPerMatch:      5,
		InterestBonusCap:      25,
		LikedTopic:            25,
		MutedTopicPenalty:     -100,
		ActiveDiscussionScale: 5,
		ActiveDiscussionCap:   20,
		SimilarityScale:       35,
		RecencyBase:           15,
		RecencyDecayPerHour:   0.5,
	}
}

// LoadCalibration loads scoring weights from a JSON calibration file.
// Partial configurations are merged over defaults. On any error the
// defaults are returned alongside the error so callers can degrade
// gracefully.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read scoring calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse scoring calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights with base weights. Only
// non-zero override values are applied, which allows partial override
// files. Returns a new Weights struct.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	apply := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	apply(&result.FollowLight, override.FollowLight)
	apply(&result.FollowMedium, override.FollowMedium)
	apply(&result.FollowHeavy, override.FollowHeavy)
	apply(&result.InterestBase, override.InterestBase)
	apply(&result.InterestPerMatch, override.InterestPerMatch)
	apply(&result.InterestBonusCap, override.InterestBonusCap)
	apply(&result.LikedTopic, override.LikedTopic)
	apply(&result.MutedTopicPenalty, override.MutedTopicPenalty)
	apply(&result.ActiveDiscussionScale, override.ActiveDiscussionScale)
	apply(&result.ActiveDiscussionCap, override.ActiveDiscussionCap)
	apply(&result.SimilarityScale, override.SimilarityScale)
	apply(&result.RecencyBase, override.RecencyBase)
	apply(&result.RecencyDecayPerHour, override.RecencyDecayPerHour)

	return &result
}

// logCalibrationOverrides logs which weights differ from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	check := func(name string, def, got float64) {
		if def != got {
			overrides = append(overrides, fmt.Sprintf("%s: %.2f -> %.2f", name, def, got))
		}
	}
	check("follow_light", defaults.FollowLight, loaded.FollowLight)
	check("follow_medium", defaults.FollowMedium, loaded.FollowMedium)
	check("follow_heavy", defaults.FollowHeavy, loaded.FollowHeavy)
	check("interest_base", defaults.InterestBase, loaded.InterestBase)
	check("interest_per_match", defaults.InterestPerMatch, loaded.InterestPerMatch)
	check("interest_bonus_cap", defaults.InterestBonusCap, loaded.InterestBonusCap)
	check("liked_topic", defaults.LikedTopic, loaded.LikedTopic)
	check("muted_topic_penalty", defaults.MutedTopicPenalty, loaded.MutedTopicPenalty)
	check("active_discussion_scale", defaults.ActiveDiscussionScale, loaded.ActiveDiscussionScale)
	check("active_discussion_cap", defaults.ActiveDiscussionCap, loaded.ActiveDiscussionCap)
	check("similarity_scale", defaults.SimilarityScale, loaded.SimilarityScale)
	check("recency_base", defaults.RecencyBase, loaded.RecencyBase)
	check("recency_decay_per_hour", defaults.RecencyDecayPerHour, loaded.RecencyDecayPerHour)

	if len(overrides) > 0 {
		slog.Info("loaded scoring calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded scoring calibration (using all defaults)")
	}
}
