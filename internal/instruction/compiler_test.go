package instruction

import (
	"errors"
	"testing"

	"github.com/onnwee/chirpfeed/internal/feed"
)

func compile(t *testing.T, text string, current feed.Config) *Result {
	t.Helper()
	result, err := NewCompiler(nil).Compile(text, current)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", text, err)
	}
	return result
}

func TestCompile_EmptyInstruction(t *testing.T) {
	cp := NewCompiler(nil)

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := cp.Compile(text, feed.DefaultConfig()); !errors.Is(err, ErrEmptyInstruction) {
			t.Errorf("Compile(%q) error = %v, want ErrEmptyInstruction", text, err)
		}
	}
}

func TestCompile_UnmatchedTextChangesNothing(t *testing.T) {
	current := feed.DefaultConfig()
	result := compile(t, "hello there, lovely weather today", current)

	if len(result.Changes) != 0 {
		t.Errorf("expected no changes, got %v", result.Changes)
	}
	if result.Config.FollowingWeight != current.FollowingWeight {
		t.Error("following weight should be unchanged")
	}
	if len(result.AddInterests) != 0 || len(result.RemoveInterests) != 0 {
		t.Errorf("expected no interest changes, got add=%v remove=%v",
			result.AddInterests, result.RemoveInterests)
	}
}

func TestCompile_FollowingTier(t *testing.T) {
	tests := []struct {
		name string
		text string
		want feed.FollowingWeight
	}{
		{"heavy", "only people i follow please", feed.FollowHeavy},
		{"heavy overrides medium substring", "much more from people i follow", feed.FollowHeavy},
		{"medium", "show me more from people i follow", feed.FollowMedium},
		{"light", "a little from people i follow", feed.FollowLight},
		{"none", "treat everyone equally", feed.FollowNone},
		{"none apostrophe", "don't favor people i follow", feed.FollowNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := feed.DefaultConfig()
			current.FollowingWeight = feed.FollowLight
			if tt.want == feed.FollowLight {
				current.FollowingWeight = feed.FollowNone
			}

			result := compile(t, tt.text, current)
			if result.Config.FollowingWeight != tt.want {
				t.Errorf("FollowingWeight = %s, want %s", result.Config.FollowingWeight, tt.want)
			}

			wantChange := "following weight set to " + string(tt.want)
			if !hasChange(result, wantChange) {
				t.Errorf("missing change %q in %v", wantChange, result.Changes)
			}
		})
	}
}

func TestCompile_FollowingTierNoChangeEntryWhenSame(t *testing.T) {
	current := feed.DefaultConfig() // medium
	result := compile(t, "show me more from people i follow", current)

	if result.Config.FollowingWeight != feed.FollowMedium {
		t.Errorf("FollowingWeight = %s, want medium", result.Config.FollowingWeight)
	}
	for _, change := range result.Changes {
		if change == "following weight set to medium" {
			t.Error("unchanged tier should not produce a change entry")
		}
	}
}

func TestCompile_DiscussionToggle(t *testing.T) {
	t.Run("enable", func(t *testing.T) {
		result := compile(t, "i want a lively feed", feed.DefaultConfig())
		if !result.Config.BoostActiveConversations {
			t.Error("expected BoostActiveConversations on")
		}
		if !hasChange(result, "boosting active discussions") {
			t.Errorf("missing change entry, got %v", result.Changes)
		}
	})

	t.Run("negative list wins over positive substring", func(t *testing.T) {
		current := feed.DefaultConfig()
		current.BoostActiveConversations = true

		// "no active discussions" contains "active discussions".
		result := compile(t, "no active discussions please", current)
		if result.Config.BoostActiveConversations {
			t.Error("expected BoostActiveConversations off")
		}
		if !hasChange(result, "no longer boosting active discussions") {
			t.Errorf("missing change entry, got %v", result.Changes)
		}
	})

	t.Run("disabling an already-off flag is silent", func(t *testing.T) {
		result := compile(t, "give me a calm feed", feed.DefaultConfig())
		if result.Config.BoostActiveConversations {
			t.Error("flag should stay off")
		}
		if len(result.Changes) != 0 {
			t.Errorf("expected no change entries, got %v", result.Changes)
		}
	})
}

func TestCompile_TopicSentiment(t *testing.T) {
	t.Run("mute moves a liked topic", func(t *testing.T) {
		current := feed.DefaultConfig()
		current.LikedTopics = []string{"dev"}

		result := compile(t, "I want to mute dev", current)
		if !result.Config.HasMutedTopic("dev") {
			t.Error("dev should be muted")
		}
		if result.Config.HasLikedTopic("dev") {
			t.Error("dev should be removed from liked topics")
		}
		if !hasChange(result, "muted topic dev") {
			t.Errorf("missing change entry, got %v", result.Changes)
		}
	})

	t.Run("like via hashtag mention", func(t *testing.T) {
		result := compile(t, "love #music", feed.DefaultConfig())
		if !result.Config.HasLikedTopic("music") {
			t.Error("music should be liked")
		}
		if !hasChange(result, "liked topic music") {
			t.Errorf("missing change entry, got %v", result.Changes)
		}
	})

	t.Run("both sentiments cancel", func(t *testing.T) {
		result := compile(t, "love and hate music", feed.DefaultConfig())
		if result.Config.HasLikedTopic("music") || result.Config.HasMutedTopic("music") {
			t.Error("conflicting sentiments should leave the topic unplaced")
		}
	})

	t.Run("sentiment outside the window is ignored", func(t *testing.T) {
		result := compile(t, "i absolutely love everything about music", feed.DefaultConfig())
		if result.Config.HasLikedTopic("music") {
			t.Error("distant sentiment should not mark the topic")
		}
		if len(result.Changes) != 0 {
			t.Errorf("expected no changes, got %v", result.Changes)
		}
	})

	t.Run("partial word is not a mention", func(t *testing.T) {
		// "developer" contains "dev" but is not a whole-token mention.
		result := compile(t, "i love a developer", feed.DefaultConfig())
		if result.Config.HasLikedTopic("dev") {
			t.Error("substring inside a longer word should not count")
		}
	})
}

func TestCompile_LikedAndMutedStayDisjoint(t *testing.T) {
	current := feed.DefaultConfig()
	current.LikedTopics = []string{"music", "art"}

	result := compile(t, "mute music", current)

	for _, liked := range result.Config.LikedTopics {
		for _, muted := range result.Config.MutedTopics {
			if liked == muted {
				t.Errorf("topic %s is both liked and muted", liked)
			}
		}
	}
	if !result.Config.HasMutedTopic("music") {
		t.Error("music should be muted")
	}
	if !result.Config.HasLikedTopic("art") {
		t.Error("art should remain liked")
	}
}

func TestCompile_DoesNotMutateInput(t *testing.T) {
	current := feed.DefaultConfig()
	current.LikedTopics = []string{"music"}

	_ = compile(t, "mute music", current)

	if len(current.LikedTopics) != 1 || current.LikedTopics[0] != "music" {
		t.Errorf("input config was mutated: %v", current.LikedTopics)
	}
}

func TestCompile_InterestExtraction(t *testing.T) {
	t.Run("trigger phrase expands into variants", func(t *testing.T) {
		result := compile(t, "show me more about jazz guitar", feed.DefaultConfig())

		want := []string{"jazz guitar", "jazz", "guitar"}
		if len(result.AddInterests) != len(want) {
			t.Fatalf("AddInterests = %v, want %v", result.AddInterests, want)
		}
		for i, term := range want {
			if result.AddInterests[i] != term {
				t.Errorf("AddInterests[%d] = %q, want %q", i, result.AddInterests[i], term)
			}
		}
		if !hasChange(result, "added interest jazz guitar") {
			t.Errorf("missing change entry, got %v", result.Changes)
		}
	})

	t.Run("noise phrases yield nothing", func(t *testing.T) {
		// Every captured word is a stopword or too short.
		result := compile(t, "show me more from people i follow", feed.DefaultConfig())
		if len(result.AddInterests) != 0 {
			t.Errorf("expected no interests, got %v", result.AddInterests)
		}
	})

	t.Run("conjunction ends the captured phrase", func(t *testing.T) {
		result := compile(t, "interested in woodworking and cooking", feed.DefaultConfig())

		want := []string{"woodworking", "cooking"}
		if len(result.AddInterests) != len(want) {
			t.Fatalf("AddInterests = %v, want %v", result.AddInterests, want)
		}
		for i, term := range want {
			if result.AddInterests[i] != term {
				t.Errorf("AddInterests[%d] = %q, want %q", i, result.AddInterests[i], term)
			}
		}
	})
}

func TestCompile_InterestRemoval(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"tired of", "tired of crypto", "crypto"},
		{"avoid", "avoid golang", "golang"},
		{"bare negation before keyword", "no anime", "anime"},
		{"negation before hashtag", "no #anime", "anime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compile(t, tt.text, feed.DefaultConfig())

			if len(result.RemoveInterests) != 1 || result.RemoveInterests[0] != tt.want {
				t.Errorf("RemoveInterests = %v, want [%s]", result.RemoveInterests, tt.want)
			}
			if len(result.AddInterests) != 0 {
				t.Errorf("expected no additions, got %v", result.AddInterests)
			}
			if !hasChange(result, "removed interest "+tt.want) {
				t.Errorf("missing change entry, got %v", result.Changes)
			}
		})
	}
}

func TestCompile_RemovalWinsOverAddition(t *testing.T) {
	result := compile(t, "show me more of crypto, actually tired of crypto", feed.DefaultConfig())

	if len(result.RemoveInterests) != 1 || result.RemoveInterests[0] != "crypto" {
		t.Errorf("RemoveInterests = %v, want [crypto]", result.RemoveInterests)
	}
	for _, term := range result.AddInterests {
		if term == "crypto" {
			t.Error("crypto must not appear in both lists")
		}
	}
}

func TestCompile_DomainKeywordWithoutTrigger(t *testing.T) {
	// Dictionary keywords are picked up even without a trigger verb.
	result := compile(t, "synthesizers are great", feed.DefaultConfig())

	if len(result.AddInterests) != 1 || result.AddInterests[0] != "synthesizers" {
		t.Errorf("AddInterests = %v, want [synthesizers]", result.AddInterests)
	}
}

func hasChange(result *Result, want string) bool {
	for _, change := range result.Changes {
		if change == want {
			return true
		}
	}
	return false
}
