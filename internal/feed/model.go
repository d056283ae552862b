// Package feed implements the personalized chirp ranking engine:
// audience eligibility, multi-signal relevance scoring, and diverse
// top-K selection. Everything in this package is pure computation over
// in-memory data; callers supply the candidate snapshot and viewer.
package feed

import (
	"time"

	"github.com/onnwee/chirpfeed/internal/topic"
	"github.com/onnwee/chirpfeed/internal/vector"
)

// ReachPolicy controls who may see a candidate at all.
type ReachPolicy string

const (
	// ReachOpen makes a chirp visible to everyone, viewer or not.
	ReachOpen ReachPolicy = "open"

	// ReachTargeted restricts a chirp to a computed audience via the
	// follower gates or an audience embedding. A targeted chirp with
	// both gates closed and no embedding is visible to its author only.
	ReachTargeted ReachPolicy = "targeted"
)

// ModerationStatus is the optional moderation label on a candidate.
type ModerationStatus string

const (
	// ModerationClean marks content with no moderation concerns.
	ModerationClean ModerationStatus = "clean"

	// ModerationNeedsReview marks content awaiting review. It does not
	// affect visibility.
	ModerationNeedsReview ModerationStatus = "needs-review"

	// ModerationBlocked hides content from everyone except its author.
	ModerationBlocked ModerationStatus = "blocked"
)

// Candidate is a chirp under consideration for a viewer's feed.
// Candidates are immutable once scored.
type Candidate struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`

	// Topic is the primary topic; SemanticTopics carries zero or more
	// additional topic strings assigned by the external bucket mapper.
	Topic          string   `json:"topic"`
	SemanticTopics []string `json:"semantic_topics,omitempty"`

	Reach             ReachPolicy `json:"reach"`
	AllowFollowers    bool        `json:"allow_followers,omitempty"`
	AllowNonFollowers bool        `json:"allow_non_followers,omitempty"`

	// AudienceEmbedding is the optional target-audience vector for
	// embedding-gated targeted chirps.
	AudienceEmbedding vector.Embedding `json:"-"`

	CreatedAt    time.Time        `json:"created_at"`
	CommentCount int              `json:"comment_count,omitempty"`
	Moderation   ModerationStatus `json:"moderation,omitempty"`
}

// Viewer is the requesting user. Read-only to the engine; mutated only
// by external account-settings flows.
type Viewer struct {
	ID        string   `json:"id"`
	Following []string `json:"following,omitempty"`
	Interests []string `json:"interests,omitempty"`

	// ProfileEmbedding is the optional profile summary vector.
	ProfileEmbedding vector.Embedding `json:"-"`
}

// Follows reports whether the viewer follows the given author.
func (v *Viewer) Follows(authorID string) bool {
	if v == nil || authorID == "" {
		return false
	}
	for _, id := range v.Following {
		if id == authorID {
			return true
		}
	}
	return false
}

// FollowingWeight is the ordered configuration tier controlling how
// strongly followed-author content is favored.
type FollowingWeight string

const (
	FollowNone   FollowingWeight = "none"
	FollowLight  FollowingWeight = "light"
	FollowMedium FollowingWeight = "medium"
	FollowHeavy  FollowingWeight = "heavy"
)

// Default engine configuration values.
const (
	DefaultSimilarityThreshold = 0.7
	DefaultTimeWindowDays      = 7
)

// Config is the per-viewer ranking configuration consumed by the
// scorer and selector. Produced by onboarding defaults and mutated
// only by the instruction compiler or direct user edits.
type Config struct {
	FollowingWeight          FollowingWeight `json:"following_weight"`
	BoostActiveConversations bool            `json:"boost_active_conversations"`
	LikedTopics              []string        `json:"liked_topics,omitempty"`
	MutedTopics              []string        `json:"muted_topics,omitempty"`
	TimeWindowDays           int             `json:"time_window_days"`

	// SimilarityThreshold gates embedding-targeted chirps; zero means
	// DefaultSimilarityThreshold so a zero-valued Config stays usable.
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
}

// DefaultConfig returns the onboarding-default configuration.
func DefaultConfig() Config {
	return Config{
		FollowingWeight:     FollowMedium,
		TimeWindowDays:      DefaultTimeWindowDays,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// EffectiveSimilarityThreshold returns the configured threshold,
// falling back to DefaultSimilarityThreshold when unset.
func (c *Config) EffectiveSimilarityThreshold() float64 {
	if c == nil || c.SimilarityThreshold <= 0 {
		return DefaultSimilarityThreshold
	}
	return c.SimilarityThreshold
}

// EffectiveTimeWindowDays returns the configured candidate time
// window, falling back to DefaultTimeWindowDays when unset.
func (c *Config) EffectiveTimeWindowDays() int {
	if c == nil || c.TimeWindowDays <= 0 {
		return DefaultTimeWindowDays
	}
	return c.TimeWindowDays
}

// HasLikedTopic reports whether the topic is in the liked set.
func (c *Config) HasLikedTopic(t string) bool {
	if c == nil {
		return false
	}
	return containsTopic(c.LikedTopics, t)
}

// HasMutedTopic reports whether the topic is in the muted set.
func (c *Config) HasMutedTopic(t string) bool {
	if c == nil {
		return false
	}
	return containsTopic(c.MutedTopics, t)
}

func containsTopic(set []string, t string) bool {
	for _, s := range set {
		if topic.Equal(s, t) {
			return true
		}
	}
	return false
}

// ScoredCandidate pairs a candidate with its relevance score and the
// human-readable reasons behind it. Created fresh on every ranking
// pass, never persisted.
type ScoredCandidate struct {
	Candidate *Candidate `json:"candidate"`
	Score     float64    `json:"score"`
	Reasons   []string   `json:"reasons"`
}
