package feed

import (
	"github.com/onnwee/chirpfeed/internal/vector"
)

// IsEligible decides whether a single candidate may be shown to a
// viewer at all, independent of ranking.
//
// Rules, in order:
//  1. Blocked content is visible to its author only.
//  2. Unless relaxMuted is set, a muted primary topic rejects.
//  3. Open reach accepts every viewer, including an absent one.
//  4. Targeted reach: the author always sees their own chirp; when both
//     an audience embedding and a viewer profile embedding exist, the
//     cosine gate subsumes the follower gates; otherwise the
//     allow-followers / allow-non-followers gates decide.
//
// Absent or malformed reach data rejects for safety. Pure predicate,
// no error conditions.
func IsEligible(c *Candidate, v *Viewer, cfg *Config, relaxMuted bool) bool {
	if c == nil {
		return false
	}

	isAuthor := v != nil && v.ID != "" && v.ID == c.AuthorID

	if c.Moderation == ModerationBlocked && !isAuthor {
		return false
	}

	if !relaxMuted && cfg.HasMutedTopic(c.Topic) {
		return false
	}

	switch c.Reach {
	case ReachOpen:
		return true

	case ReachTargeted:
		if isAuthor {
			return true
		}
		if v == nil || v.ID == "" {
			return false
		}
		if c.AudienceEmbedding.Present() && v.ProfileEmbedding.Present() {
			return vector.Cosine(c.AudienceEmbedding, v.ProfileEmbedding) >= cfg.EffectiveSimilarityThreshold()
		}
		if c.AllowFollowers && v.Follows(c.AuthorID) {
			return true
		}
		if c.AllowNonFollowers && !v.Follows(c.AuthorID) {
			return true
		}
		return false

	default:
		// Unknown reach policy rejects rather than leaking content.
		return false
	}
}
