// Package topic provides the canonical topic vocabulary used for
// instruction parsing and topic matching.
package topic

import "strings"

// DefaultTopics is the canonical topic vocabulary for the chirp domain.
// Dynamically created topics (from the external bucket-mapping system)
// are treated as opaque strings and compare by exact case-insensitive
// match only.
var DefaultTopics = []string{
	"dev",
	"music",
	"art",
	"gaming",
	"food",
	"travel",
	"sports",
	"science",
	"politics",
	"movies",
	"fitness",
	"fashion",
	"photography",
	"books",
	"news",
}

// Vocabulary is a fixed set of canonical topic strings with
// case-insensitive membership checks.
type Vocabulary struct {
	// canonical maps the lowercased form to the canonical spelling.
	canonical map[string]string
	ordered   []string
}

// NewVocabulary builds a vocabulary from the given topic list.
// Duplicate entries (case-insensitively) are collapsed; the first
// spelling wins as canonical.
func NewVocabulary(topics []string) *Vocabulary {
	v := &Vocabulary{canonical: make(map[string]string, len(topics))}
	for _, tp := range topics {
		key := strings.ToLower(strings.TrimSpace(tp))
		if key == "" {
			continue
		}
		if _, ok := v.canonical[key]; ok {
			continue
		}
		v.canonical[key] = tp
		v.ordered = append(v.ordered, tp)
	}
	return v
}

// Default returns a vocabulary over DefaultTopics.
func Default() *Vocabulary {
	return NewVocabulary(DefaultTopics)
}

// Contains reports whether the given string is a canonical topic,
// compared case-insensitively.
func (v *Vocabulary) Contains(s string) bool {
	_, ok := v.canonical[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Canonical returns the canonical spelling for a topic string and
// whether it is in the vocabulary.
func (v *Vocabulary) Canonical(s string) (string, bool) {
	c, ok := v.canonical[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// All returns the canonical topics in insertion order.
func (v *Vocabulary) All() []string {
	out := make([]string, len(v.ordered))
	copy(out, v.ordered)
	return out
}

// Equal reports whether two topic strings refer to the same topic.
// Topics are opaque; equality is exact case-insensitive match.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
