package instruction

import (
	"regexp"

	"github.com/onnwee/chirpfeed/internal/feed"
)

// tierRule binds a following-weight tier to the keyword phrases that
// select it. Rules are evaluated in the order of followingTierRules;
// the first rule with any matching phrase wins.
type tierRule struct {
	Tier     feed.FollowingWeight
	Keywords []string
}

// followingTierRules is checked heavy -> medium -> light -> none so
// that stronger phrasings ("much more from people i follow") are not
// swallowed by their weaker substrings.
var followingTierRules = []tierRule{
	{
		Tier: feed.FollowHeavy,
		Keywords: []string{
			"only people i follow",
			"only from people i follow",
			"only my follows",
			"mostly people i follow",
			"much more from people i follow",
			"heavily favor people i follow",
		},
	},
	{
		Tier: feed.FollowMedium,
		Keywords: []string{
			"more from people i follow",
			"prefer people i follow",
			"prioritize people i follow",
			"boost people i follow",
			"favor my follows",
		},
	},
	{
		Tier: feed.FollowLight,
		Keywords: []string{
			"slightly favor people i follow",
			"lightly favor people i follow",
			"a little from people i follow",
			"a bit from people i follow",
		},
	},
	{
		Tier: feed.FollowNone,
		Keywords: []string{
			"don't favor people i follow",
			"dont favor people i follow",
			"ignore who i follow",
			"everyone equally",
			"no follow boost",
		},
	},
}

// Active-discussion toggle keywords. The negative list is checked
// before the positive one so "no active discussions" does not read as
// a request for more.
var (
	discussionOffKeywords = []string{
		"stop boosting discussions",
		"no active discussions",
		"quiet posts",
		"fewer comments",
		"less chatter",
		"calm feed",
	}
	discussionOnKeywords = []string{
		"active discussion",
		"active discussions",
		"lively",
		"busy threads",
		"lots of comments",
		"popular conversations",
		"trending threads",
	}
)

// Sentiment keywords for topic-proximity matching. A sentiment word
// within sentimentWindow characters of a topic mention (either
// direction) marks that topic.
var (
	positiveSentiments = []string{"more", "love", "like", "boost", "enjoy", "prefer", "favorite"}
	negativeSentiments = []string{"less", "avoid", "mute", "hide", "hate", "block", "fewer"}
)

// sentimentWindow is the maximum character distance between a
// sentiment keyword and a topic mention. A tunable heuristic constant,
// not a semantic guarantee; longer phrasings fall outside it.
const sentimentWindow = 10

// interestTrigger pairs a trigger-verb capture pattern with its
// polarity. The captured phrase is split into whole-phrase and
// per-word interest variants.
type interestTrigger struct {
	Pattern *regexp.Regexp
	Remove  bool
}

// interestTriggers is evaluated against the lowercased instruction.
// Patterns capture the phrase following the trigger verb up to
// punctuation.
var interestTriggers = []interestTrigger{
	{Pattern: regexp.MustCompile(`show me (?:more )?(?:about |of )?([a-z0-9][a-z0-9' -]*)`), Remove: false},
	{Pattern: regexp.MustCompile(`interested in ([a-z0-9][a-z0-9' -]*)`), Remove: false},
	{Pattern: regexp.MustCompile(`more (?:about |of |on )?([a-z0-9][a-z0-9' -]*)`), Remove: false},
	{Pattern: regexp.MustCompile(`avoid ([a-z0-9][a-z0-9' -]*)`), Remove: true},
	{Pattern: regexp.MustCompile(`tired of ([a-z0-9][a-z0-9' -]*)`), Remove: true},
	{Pattern: regexp.MustCompile(`less (?:about |of )?([a-z0-9][a-z0-9' -]*)`), Remove: true},
}

// phraseBreaks end a captured interest phrase early; conjunctions
// usually start an unrelated clause.
var phraseBreaks = []string{" and ", " but ", " plus ", " also "}

// domainKeywords is a fixed dictionary of common interest terms
// scanned directly in the instruction text, independent of the trigger
// patterns. Terms here must not collide with the topic vocabulary.
var domainKeywords = []string{
	"golang",
	"javascript",
	"machine learning",
	"indie games",
	"music production",
	"cooking",
	"hiking",
	"jazz",
	"anime",
	"crypto",
	"skateboarding",
	"vinyl",
	"synthesizers",
	"street art",
	"woodworking",
}

// removalTriggers are phrases that, immediately preceding a dictionary
// keyword, route it to the remove list instead of the add list.
var removalTriggers = []string{
	"no",
	"not",
	"less",
	"avoid",
	"mute",
	"hide",
	"skip",
	"without",
	"fewer",
	"tired of",
	"stop showing",
}

// minInterestTokenLen drops noise tokens from per-word interest
// variants.
const minInterestTokenLen = 3

// interestStopwords are filler words never worth keeping as interests.
var interestStopwords = map[string]bool{
	"the":     true,
	"and":     true,
	"about":   true,
	"from":    true,
	"with":    true,
	"some":    true,
	"stuff":   true,
	"things":  true,
	"please":  true,
	"posts":   true,
	"chirps":  true,
	"content": true,
	"people":  true,
	"follow":  true,
}
