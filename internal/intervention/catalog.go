package intervention

import (
	"fmt"
	"time"

	"github.com/pscheid92/studypulse/internal/domain"
)

// Config is the static intervention template for one emotion. Immutable
// after startup.
type Config struct {
	Type     domain.InterventionType
	Priority domain.Priority
	Messages []string
	Actions  []string
}

// catalog maps every emotion to its template. The focused entry has no
// messages on purpose: focused learners are not interrupted.
var catalog = map[domain.EmotionLabel]Config{
	domain.Confused: {
		Type:     domain.TypeHint,
		Priority: domain.PriorityHigh,
		Messages: []string{
			"I notice you might be stuck. Would you like a hint? 💡",
			"Let me break this down into smaller steps...",
			"Here's a simpler way to think about this concept:",
			"Try focusing on just this one part first: ",
			"A common approach is to start by...",
		},
		Actions: []string{"show_hint", "simplify_content", "show_example"},
	},
	domain.Overwhelmed: {
		Type:     domain.TypeSimplify,
		Priority: domain.PriorityHigh,
		Messages: []string{
			"This is a lot to take in. Let's simplify. 🌟",
			"Don't worry about understanding everything at once.",
			"Let's focus on just the core concept for now.",
			"You're doing great - one step at a time!",
			"Let me highlight just the key points:",
		},
		Actions: []string{"reduce_content", "highlight_key_points", "suggest_break"},
	},
	domain.Frustrated: {
		Type:     domain.TypeBreak,
		Priority: domain.PriorityHigh,
		Messages: []string{
			"It's okay to feel stuck. How about a 2-minute break? 🧘",
			"Sometimes stepping away helps. Take a deep breath.",
			"You're working hard! A short pause might help refresh your mind.",
			"Let's take a quick mindfulness moment...",
			"Remember: every expert was once a beginner. You've got this!",
		},
		Actions: []string{"suggest_break", "show_encouragement", "offer_alternative_topic"},
	},
	domain.Bored: {
		Type:     domain.TypeChallenge,
		Priority: domain.PriorityMedium,
		Messages: []string{
			"Ready for a challenge? Let's make this interesting! 🎮",
			"Quick quiz time! Can you solve this?",
			"Here's a fun puzzle related to what you're learning:",
			"Let's try a more advanced example!",
			"Challenge: Can you explain this concept in your own words?",
		},
		Actions: []string{"show_quiz", "increase_difficulty", "gamify_content"},
	},
	domain.Curious: {
		Type:     domain.TypeExplore,
		Priority: domain.PriorityMedium,
		Messages: []string{
			"Great curiosity! Here's something interesting... ✨",
			"Want to dive deeper? Check this out:",
			"Fun fact related to this topic:",
			"Here's an advanced concept you might find fascinating:",
			"Since you're curious, here's how this connects to...",
		},
		Actions: []string{"show_deep_dive", "suggest_related_topics", "show_advanced_content"},
	},
	domain.Anxious: {
		Type:     domain.TypeReassure,
		Priority: domain.PriorityHigh,
		Messages: []string{
			"You're doing fine! Take your time. 💚",
			"There's no rush - learning at your own pace is best.",
			"Remember, it's okay not to know everything immediately.",
			"You've already made progress! Let's build on that.",
			"Deep breath... you've got this!",
		},
		Actions: []string{"show_encouragement", "reduce_pressure", "show_progress"},
	},
	domain.Confident: {
		Type:     domain.TypeEncourage,
		Priority: domain.PriorityLow,
		Messages: []string{
			"You're doing great! Keep up the momentum! 🚀",
			"Excellent understanding! Ready for more?",
			"You've mastered this well. Want to try something harder?",
			"Great progress! Your understanding is solid.",
			"Nice work! Consider teaching this to solidify your knowledge.",
		},
		Actions: []string{"increase_difficulty", "suggest_next_topic", "minimal_interruption"},
	},
	domain.Focused: {
		Type:     domain.TypeSuppress,
		Priority: domain.PriorityLow,
		Messages: nil,
		Actions:  []string{"suppress_notifications", "track_focus_duration", "minimal_interruption"},
	},
}

// cooldowns holds the per-emotion minimum spacing between interventions.
// The focused entry is known dead configuration: the dedicated focus-marker
// path with its 600s gate intercepts before this value is ever consulted.
var cooldowns = map[domain.EmotionLabel]time.Duration{
	domain.Confused:    30 * time.Second,
	domain.Overwhelmed: 45 * time.Second,
	domain.Frustrated:  60 * time.Second,
	domain.Bored:       40 * time.Second,
	domain.Curious:     20 * time.Second,
	domain.Anxious:     45 * time.Second,
	domain.Confident:   60 * time.Second,
	domain.Focused:     120 * time.Second,
}

const (
	// defaultCooldown applies to any label missing from the table.
	defaultCooldown = 30 * time.Second

	// focusMarkInterval gates the silent focus-tracking marker.
	focusMarkInterval = 600 * time.Second
)

// validateTables ensures every emotion has a catalog and a cooldown entry,
// so lookups never silently default at call time.
func validateTables() error {
	for _, label := range domain.Labels() {
		if _, ok := catalog[label]; !ok {
			return fmt.Errorf("intervention catalog missing entry for %q", label)
		}
		if _, ok := cooldowns[label]; !ok {
			return fmt.Errorf("cooldown table missing entry for %q", label)
		}
	}
	return nil
}

func cooldownFor(label domain.EmotionLabel) time.Duration {
	if d, ok := cooldowns[label]; ok {
		return d
	}
	return defaultCooldown
}
