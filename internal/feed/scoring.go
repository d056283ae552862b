package feed

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/onnwee/chirpfeed/internal/vector"
)

// reasonThreshold is the minimum term contribution that earns a
// human-readable reason string.
const reasonThreshold = 5.0

// fallbackReason is used when no term contributed materially.
const fallbackReason = "recent post"

// termFunc computes one additive scoring term. Terms are independent:
// no term may read another term's result, which keeps the scorer
// order-independent and testable term by term. A term returns its
// delta and an optional reason; an empty reason means no annotation
// even when the delta is material.
type termFunc func(c *Candidate, v *Viewer, cfg *Config, w *Weights, now time.Time) (float64, string)

// scoreTerms is the ordered fold the scorer runs. Reason strings are
// emitted in this order.
var scoreTerms = []termFunc{
	followingTerm,
	interestTerm,
	likedTopicTerm,
	mutedTopicTerm,
	activeDiscussionTerm,
	similarityTerm,
	recencyTerm,
}

// Score computes the relevance of one candidate for one viewer using
// the default weights and the current time.
func Score(c *Candidate, v *Viewer, cfg *Config) ScoredCandidate {
	return ScoreAt(c, v, cfg, nil, time.Now())
}

// ScoreAt is Score with explicit weights and reference time; nil
// weights use DefaultWeights. Pure function, no error conditions:
// missing optional fields contribute 0.
func ScoreAt(c *Candidate, v *Viewer, cfg *Config, w *Weights, now time.Time) ScoredCandidate {
	if w == nil {
		w = DefaultWeights()
	}

	var score float64
	var reasons []string
	for _, term := range scoreTerms {
		delta, reason := term(c, v, cfg, w, now)
		score += delta
		if delta > reasonThreshold && reason != "" {
			reasons = append(reasons, reason)
		}
	}

	if len(reasons) == 0 {
		reasons = []string{fallbackReason}
	}

	return ScoredCandidate{Candidate: c, Score: score, Reasons: reasons}
}

// followingTerm rewards chirps by followed authors (or the viewer's
// own chirps) according to the configured tier.
func followingTerm(c *Candidate, v *Viewer, cfg *Config, w *Weights, _ time.Time) (float64, string) {
	if v == nil || v.ID == "" {
		return 0, ""
	}
	if v.ID != c.AuthorID && !v.Follows(c.AuthorID) {
		return 0, ""
	}

	var weight float64
	switch tier := configTier(cfg); tier {
	case FollowLight:
		weight = w.FollowLight
	case FollowMedium:
		weight = w.FollowMedium
	case FollowHeavy:
		weight = w.FollowHeavy
	default:
		return 0, ""
	}

	return weight, "from someone you follow"
}

func configTier(cfg *Config) FollowingWeight {
	if cfg == nil {
		return FollowNone
	}
	return cfg.FollowingWeight
}

// interestTerm counts the candidate's semantic topics that fuzzy-match
// a viewer interest (case-insensitive substring, either direction).
// Any match adds InterestBase plus a capped per-match bonus; the first
// match is recorded as the reason.
func interestTerm(c *Candidate, v *Viewer, _ *Config, w *Weights, _ time.Time) (float64, string) {
	if v == nil || len(v.Interests) == 0 || len(c.SemanticTopics) == 0 {
		return 0, ""
	}

	matches := 0
	firstMatch := ""
	for _, st := range c.SemanticTopics {
		for _, interest := range v.Interests {
			if fuzzyMatch(st, interest) {
				matches++
				if firstMatch == "" {
					firstMatch = st
				}
				break
			}
		}
	}

	if matches == 0 {
		return 0, ""
	}

	bonus := math.Min(float64(matches)*w.InterestPerMatch, w.InterestBonusCap)
	return w.InterestBase + bonus, fmt.Sprintf("matches your interest in %s", firstMatch)
}

// fuzzyMatch reports a case-insensitive substring match in either
// direction. Blank operands never match.
func fuzzyMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// likedTopicTerm rewards a liked primary topic.
func likedTopicTerm(c *Candidate, _ *Viewer, cfg *Config, w *Weights, _ time.Time) (float64, string) {
	if !cfg.HasLikedTopic(c.Topic) {
		return 0, ""
	}
	return w.LikedTopic, fmt.Sprintf("about %s, which you like", c.Topic)
}

// mutedTopicTerm penalizes a muted primary topic. Normally such
// candidates are filtered before scoring; this term only matters when
// the selector runs its relaxed-mute fallback.
func mutedTopicTerm(c *Candidate, _ *Viewer, cfg *Config, w *Weights, _ time.Time) (float64, string) {
	if !cfg.HasMutedTopic(c.Topic) {
		return 0, ""
	}
	return w.MutedTopicPenalty, ""
}

// activeDiscussionTerm rewards lively comment threads on a log curve,
// only when the boost is enabled.
func activeDiscussionTerm(c *Candidate, _ *Viewer, cfg *Config, w *Weights, _ time.Time) (float64, string) {
	if cfg == nil || !cfg.BoostActiveConversations {
		return 0, ""
	}
	if c.CommentCount <= 0 {
		return 0, ""
	}

	delta := math.Min(w.ActiveDiscussionCap, math.Log10(float64(c.CommentCount)+1)*w.ActiveDiscussionScale)
	return delta, "active discussion"
}

// similarityTerm rewards embedding proximity between the viewer
// profile and the candidate's target audience. Contributes 0 when
// either embedding is absent or similarity is non-positive.
func similarityTerm(c *Candidate, v *Viewer, _ *Config, w *Weights, _ time.Time) (float64, string) {
	if v == nil || !v.ProfileEmbedding.Present() || !c.AudienceEmbedding.Present() {
		return 0, ""
	}

	sim := vector.Cosine(v.ProfileEmbedding, c.AudienceEmbedding)
	if sim <= 0 {
		return 0, ""
	}
	return sim * w.SimilarityScale, "close to your profile"
}

// recencyTerm decays linearly from RecencyBase to zero (at 30 hours
// with default weights) and never goes negative.
func recencyTerm(c *Candidate, _ *Viewer, _ *Config, w *Weights, now time.Time) (float64, string) {
	hours := now.Sub(c.CreatedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	delta := math.Max(0, w.RecencyBase-hours*w.RecencyDecayPerHour)
	return delta, "posted recently"
}
