package sensor

import "github.com/pscheid92/studypulse/internal/domain"

// facialVocabulary maps the facial model's raw emotion vocabulary into the
// canonical label set.
var facialVocabulary = map[string]domain.EmotionLabel{
	"angry":    domain.Frustrated,
	"disgust":  domain.Frustrated,
	"fear":     domain.Anxious,
	"happy":    domain.Confident,
	"sad":      domain.Overwhelmed,
	"surprise": domain.Curious,
	"neutral":  domain.Focused,
}

// voiceVocabulary maps the voice model's coarse sentiment vocabulary. The
// voice sidecar mostly emits canonical labels already; these cover its
// sentiment fallbacks.
var voiceVocabulary = map[string]domain.EmotionLabel{
	"positive": domain.Confident,
	"negative": domain.Frustrated,
	"calm":     domain.Focused,
}

// mapLabel resolves a raw sidecar label: first through the channel
// vocabulary, then as an already-canonical label. Unknown labels yield no
// evidence rather than a guess.
func mapLabel(vocab map[string]domain.EmotionLabel, raw string) (domain.EmotionLabel, bool) {
	if mapped, ok := vocab[raw]; ok {
		return mapped, true
	}
	return domain.ParseLabel(raw)
}
