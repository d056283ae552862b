package feed

import (
	"math"
	"sort"
	"time"
)

// Diversity caps for the ranked output. Within the first
// diversityWindow accepted results an author may appear at most
// authorCapWindow times; past the window the author's total across the
// whole result is capped at authorCapTotal.
const (
	diversityWindow = 20
	authorCapWindow = 3
	authorCapTotal  = 5
)

// tieBand is the minimum absolute and relative score distance below
// which two candidates are considered tied; within a tie the more
// recent candidate sorts first.
const (
	tieBandFloor    = 2.0
	tieBandFraction = 0.05
)

// Rank orders the eligible subset of candidates for a viewer using
// default weights and the current time. The result holds at most limit
// entries.
func Rank(candidates []*Candidate, v *Viewer, cfg *Config, limit int) []ScoredCandidate {
	return RankAt(candidates, v, cfg, nil, time.Now(), limit)
}

// RankAt is Rank with explicit weights and reference time; nil weights
// use DefaultWeights. Deterministic: the same candidate set, viewer,
// configuration, and time always produce the same ordered output.
func RankAt(candidates []*Candidate, v *Viewer, cfg *Config, w *Weights, now time.Time, limit int) []ScoredCandidate {
	out, _ := rankAt(candidates, v, cfg, w, now, limit)
	return out
}

// rankAt additionally reports whether the relaxed-mute fallback pass
// was used, for observability.
func rankAt(candidates []*Candidate, v *Viewer, cfg *Config, w *Weights, now time.Time, limit int) ([]ScoredCandidate, bool) {
	// No personalization is possible without a viewer.
	if v == nil || v.ID == "" {
		return []ScoredCandidate{}, false
	}
	if limit <= 0 {
		return []ScoredCandidate{}, false
	}

	window := time.Duration(cfg.EffectiveTimeWindowDays()) * 24 * time.Hour
	fresh := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if now.Sub(c.CreatedAt) <= window {
			fresh = append(fresh, c)
		}
	}

	eligible := filterEligible(fresh, v, cfg, false)
	relaxed := false
	if len(eligible) == 0 {
		// Every candidate was filtered out; retry without the muted
		// topic gate rather than fabricating results.
		eligible = filterEligible(fresh, v, cfg, true)
		relaxed = true
	}
	if len(eligible) == 0 {
		return []ScoredCandidate{}, relaxed
	}

	scored := make([]ScoredCandidate, 0, len(eligible))
	for _, c := range eligible {
		scored = append(scored, ScoreAt(c, v, cfg, w, now))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if scoresTied(a.Score, b.Score) {
			if !a.Candidate.CreatedAt.Equal(b.Candidate.CreatedAt) {
				return a.Candidate.CreatedAt.After(b.Candidate.CreatedAt)
			}
			return a.Candidate.ID < b.Candidate.ID
		}
		return a.Score > b.Score
	})

	// Diversity pass: single ordered walk with per-call author
	// counters, no cross-call state.
	perAuthor := make(map[string]int)
	result := make([]ScoredCandidate, 0, min(limit, len(scored)))
	for _, sc := range scored {
		authorCap := authorCapWindow
		if len(result) >= diversityWindow {
			authorCap = authorCapTotal
		}
		if perAuthor[sc.Candidate.AuthorID] >= authorCap {
			continue
		}
		perAuthor[sc.Candidate.AuthorID]++
		result = append(result, sc)
		if len(result) >= limit {
			break
		}
	}

	return result, relaxed
}

// scoresTied reports whether two scores fall inside the tie band:
// |a-b| < max(tieBandFloor, max(|a|,|b|) * tieBandFraction). The band
// keeps score noise from overriding recency for near-equal items while
// still respecting strong score differences.
func scoresTied(a, b float64) bool {
	band := math.Max(tieBandFloor, math.Max(math.Abs(a), math.Abs(b))*tieBandFraction)
	return math.Abs(a-b) < band
}

func filterEligible(candidates []*Candidate, v *Viewer, cfg *Config, relaxMuted bool) []*Candidate {
	out := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if IsEligible(c, v, cfg, relaxMuted) {
			out = append(out, c)
		}
	}
	return out
}
