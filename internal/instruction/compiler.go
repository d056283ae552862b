// Package instruction compiles free-text viewer instructions ("show me
// more from people I follow") into the structured ranking
// configuration the scorer consumes. Parsing is heuristic: declarative
// keyword tables consumed by generic matchers, never a model call.
package instruction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/onnwee/chirpfeed/internal/feed"
	"github.com/onnwee/chirpfeed/internal/topic"
)

// ErrEmptyInstruction is returned when the instruction text is empty
// or whitespace-only. It is the compiler's only input-validation error;
// unmatched text simply produces no changes.
var ErrEmptyInstruction = errors.New("instruction text is empty")

// Result is the outcome of compiling one instruction. Interest
// persistence is the caller's responsibility: the add/remove lists are
// returned separately and never applied to viewer state here.
type Result struct {
	Config          feed.Config `json:"config"`
	Changes         []string    `json:"changes"`
	AddInterests    []string    `json:"add_interests,omitempty"`
	RemoveInterests []string    `json:"remove_interests,omitempty"`
}

// Compiler translates instructions against a canonical topic
// vocabulary. Stateless and safe for concurrent use.
type Compiler struct {
	vocab *topic.Vocabulary
}

// NewCompiler returns a compiler over the given vocabulary; nil uses
// the default chirp vocabulary.
func NewCompiler(vocab *topic.Vocabulary) *Compiler {
	if vocab == nil {
		vocab = topic.Default()
	}
	return &Compiler{vocab: vocab}
}

// Compile parses the instruction and returns the updated
// configuration, a human-readable change log, and the interest
// add/remove lists. The input configuration is never mutated. After
// compilation the liked and muted topic sets are always disjoint.
func (cp *Compiler) Compile(text string, current feed.Config) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInstruction
	}

	lower := strings.ToLower(text)
	result := &Result{Config: cloneConfig(current)}

	cp.applyFollowingTier(lower, result)
	cp.applyDiscussionToggle(lower, result)
	cp.applyTopicSentiment(lower, result)

	routes := newInterestRoutes()
	cp.extractInterests(lower, routes)
	cp.scanDomainKeywords(lower, routes)
	routes.apply(result)

	return result, nil
}

// applyFollowingTier matches the tier keyword tables in fixed
// heavy -> medium -> light -> none order; the first matching tier
// overrides the configured weight. No match leaves it unchanged.
func (cp *Compiler) applyFollowingTier(lower string, result *Result) {
	for _, rule := range followingTierRules {
		if !containsAny(lower, rule.Keywords) {
			continue
		}
		if result.Config.FollowingWeight != rule.Tier {
			result.Config.FollowingWeight = rule.Tier
			result.Changes = append(result.Changes, fmt.Sprintf("following weight set to %s", rule.Tier))
		}
		return
	}
}

// applyDiscussionToggle checks the negative keyword list before the
// positive one; absence of both leaves the flag unchanged.
func (cp *Compiler) applyDiscussionToggle(lower string, result *Result) {
	if containsAny(lower, discussionOffKeywords) {
		if result.Config.BoostActiveConversations {
			result.Config.BoostActiveConversations = false
			result.Changes = append(result.Changes, "no longer boosting active discussions")
		}
		return
	}
	if containsAny(lower, discussionOnKeywords) {
		if !result.Config.BoostActiveConversations {
			result.Config.BoostActiveConversations = true
			result.Changes = append(result.Changes, "boosting active discussions")
		}
	}
}

// applyTopicSentiment checks every canonical topic mentioned in the
// text (bare word or hashtag token) for a positive or negative
// sentiment keyword within sentimentWindow characters. Positive
// without negative likes the topic; negative without positive mutes
// it; both or neither leaves its placement unchanged.
func (cp *Compiler) applyTopicSentiment(lower string, result *Result) {
	for _, canonical := range cp.vocab.All() {
		mentions := findOccurrences(lower, strings.ToLower(canonical))
		if len(mentions) == 0 {
			continue
		}

		positive := sentimentNearAny(lower, positiveSentiments, mentions)
		negative := sentimentNearAny(lower, negativeSentiments, mentions)

		switch {
		case positive && !negative:
			if likeTopic(&result.Config, canonical) {
				result.Changes = append(result.Changes, fmt.Sprintf("liked topic %s", canonical))
			}
		case negative && !positive:
			if muteTopic(&result.Config, canonical) {
				result.Changes = append(result.Changes, fmt.Sprintf("muted topic %s", canonical))
			}
		}
	}
}

// extractInterests pattern-matches phrases following trigger verbs and
// splits each captured phrase into a whole-phrase variant plus
// per-word variants, discarding vocabulary words, stopwords, and
// sub-3-character tokens.
func (cp *Compiler) extractInterests(lower string, routes *interestRoutes) {
	for _, trigger := range interestTriggers {
		for _, match := range trigger.Pattern.FindAllStringSubmatch(lower, -1) {
			for _, term := range cp.interestVariants(match[1]) {
				routes.add(term, trigger.Remove)
			}
		}
	}
}

// scanDomainKeywords looks the fixed dictionary up directly in the
// text; a removal-trigger phrase immediately preceding an occurrence
// routes the keyword to the remove list.
func (cp *Compiler) scanDomainKeywords(lower string, routes *interestRoutes) {
	for _, kw := range domainKeywords {
		occurrences := findOccurrences(lower, kw)
		if len(occurrences) == 0 {
			continue
		}

		remove := false
		for _, occ := range occurrences {
			if removalTriggerPrecedes(lower, occ[0]) {
				remove = true
				break
			}
		}
		routes.add(kw, remove)
	}
}

// interestVariants expands a captured phrase into candidate interest
// terms: the cleaned whole phrase (when multi-word) plus each
// qualifying word. A phrase with no qualifying words yields nothing.
func (cp *Compiler) interestVariants(phrase string) []string {
	phrase = trimPhrase(phrase)
	if phrase == "" {
		return nil
	}

	var words []string
	for _, w := range strings.Fields(phrase) {
		w = strings.Trim(w, "'-")
		if len(w) < minInterestTokenLen || interestStopwords[w] || cp.vocab.Contains(w) {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil
	}

	var variants []string
	if len(words) > 1 {
		joined := strings.Join(words, " ")
		if !cp.vocab.Contains(joined) {
			variants = append(variants, joined)
		}
	}
	return append(variants, words...)
}

// interestRoutes accumulates add/remove decisions before they are
// flushed onto a Result. Removal takes precedence over addition for
// the same term; duplicates collapse.
type interestRoutes struct {
	order   []string
	removed map[string]bool
	seen    map[string]bool
}

func newInterestRoutes() *interestRoutes {
	return &interestRoutes{
		removed: make(map[string]bool),
		seen:    make(map[string]bool),
	}
}

func (r *interestRoutes) add(term string, remove bool) {
	if !r.seen[term] {
		r.seen[term] = true
		r.order = append(r.order, term)
	}
	if remove {
		r.removed[term] = true
	}
}

// apply flushes the accumulated routes onto the result, generating one
// change entry per final term.
func (r *interestRoutes) apply(result *Result) {
	for _, term := range r.order {
		if r.removed[term] {
			result.RemoveInterests = append(result.RemoveInterests, term)
			result.Changes = append(result.Changes, fmt.Sprintf("removed interest %s", term))
		} else {
			result.AddInterests = append(result.AddInterests, term)
			result.Changes = append(result.Changes, fmt.Sprintf("added interest %s", term))
		}
	}
}

// likeTopic moves a topic into the liked set and out of the muted set.
// Reports whether anything changed.
func likeTopic(cfg *feed.Config, t string) bool {
	changed := false
	if !cfg.HasLikedTopic(t) {
		cfg.LikedTopics = append(cfg.LikedTopics, t)
		changed = true
	}
	if removed := removeTopic(cfg.MutedTopics, t); removed != nil {
		cfg.MutedTopics = removed
		changed = true
	}
	return changed
}

// muteTopic moves a topic into the muted set and out of the liked set.
// Reports whether anything changed.
func muteTopic(cfg *feed.Config, t string) bool {
	changed := false
	if !cfg.HasMutedTopic(t) {
		cfg.MutedTopics = append(cfg.MutedTopics, t)
		changed = true
	}
	if removed := removeTopic(cfg.LikedTopics, t); removed != nil {
		cfg.LikedTopics = removed
		changed = true
	}
	return changed
}

// removeTopic returns the set without the topic, or nil when the topic
// was not present.
func removeTopic(set []string, t string) []string {
	for i, s := range set {
		if topic.Equal(s, t) {
			out := make([]string, 0, len(set)-1)
			out = append(out, set[:i]...)
			for _, rest := range set[i+1:] {
				if !topic.Equal(rest, t) {
					out = append(out, rest)
				}
			}
			return out
		}
	}
	return nil
}

// cloneConfig deep-copies the topic slices so the caller's
// configuration is never mutated.
func cloneConfig(cfg feed.Config) feed.Config {
	out := cfg
	if len(cfg.LikedTopics) > 0 {
		out.LikedTopics = append([]string(nil), cfg.LikedTopics...)
	}
	if len(cfg.MutedTopics) > 0 {
		out.MutedTopics = append([]string(nil), cfg.MutedTopics...)
	}
	return out
}

// containsAny reports whether any keyword occurs in the text.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// findOccurrences returns the [start, end) spans where term occurs in
// text as a whole token (bare word or hashtag-style, so "#dev" counts
// but "developer" does not). Multi-word terms match with the same
// boundary rules at both edges.
func findOccurrences(text, term string) [][2]int {
	if term == "" {
		return nil
	}
	var spans [][2]int
	for offset := 0; ; {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(term)

		startOK := start == 0 || !isWordChar(text[start-1])
		endOK := end == len(text) || !isWordChar(text[end])
		if startOK && endOK {
			spans = append(spans, [2]int{start, end})
		}
		offset = start + 1
	}
	return spans
}

// sentimentNearAny reports whether any keyword occurs within
// sentimentWindow characters (either direction) of any mention span.
func sentimentNearAny(text string, keywords []string, mentions [][2]int) bool {
	for _, kw := range keywords {
		for _, occ := range findOccurrences(text, kw) {
			for _, mention := range mentions {
				if spansNear(occ, mention, sentimentWindow) {
					return true
				}
			}
		}
	}
	return false
}

// spansNear reports whether the gap between two spans is at most
// window characters.
func spansNear(a, b [2]int, window int) bool {
	switch {
	case a[1] <= b[0]:
		return b[0]-a[1] <= window
	case b[1] <= a[0]:
		return a[0]-b[1] <= window
	default:
		return true
	}
}

// removalTriggerPrecedes reports whether a removal-trigger phrase
// immediately precedes the given text position.
func removalTriggerPrecedes(text string, pos int) bool {
	prefix := strings.TrimRight(text[:pos], " #")
	for _, trigger := range removalTriggers {
		if strings.HasSuffix(prefix, trigger) {
			// The trigger must itself sit on a word boundary.
			start := len(prefix) - len(trigger)
			if start == 0 || !isWordChar(prefix[start-1]) {
				return true
			}
		}
	}
	return false
}

// trimPhrase cleans a captured interest phrase: cut at the first
// conjunction, trim surrounding junk.
func trimPhrase(phrase string) string {
	for _, br := range phraseBreaks {
		if i := strings.Index(phrase, br); i >= 0 {
			phrase = phrase[:i]
		}
	}
	return strings.Trim(phrase, " '-")
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
