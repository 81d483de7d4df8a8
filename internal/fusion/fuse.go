package fusion

import (
	"math"

	"github.com/pscheid92/studypulse/internal/domain"
)

// Channel weights for disagreement scoring. Facial expressions are treated
// as the more reliable channel.
const (
	facialWeight = 0.6
	voiceWeight  = 0.4
)

const (
	// fallbackConfidence is reported when neither channel has evidence.
	fallbackConfidence = 0.3
	// singleChannelDiscount penalizes evidence from only one channel.
	singleChannelDiscount = 0.8
	// agreementBonus is added when both channels report the same label.
	agreementBonus = 0.15
	// partialCredit is the share of the losing score granted when the two
	// labels are compatible.
	partialCredit = 0.3
	// conflictPenalty shrinks the winning score on genuine conflict.
	conflictPenalty = 0.7
)

// fuse reconciles one facial and one voice reading into a single belief.
// Cases are evaluated in strict priority order; score ties resolve in favor
// of the facial channel.
func fuse(facial, voice domain.EmotionSample) domain.FusedState {
	switch {
	case !facial.Present && !voice.Present:
		return domain.FusedState{Label: domain.Focused, Confidence: fallbackConfidence}
	case !facial.Present:
		return domain.FusedState{Label: voice.Label, Confidence: voice.Confidence * singleChannelDiscount}
	case !voice.Present:
		return domain.FusedState{Label: facial.Label, Confidence: facial.Confidence * singleChannelDiscount}
	}

	// Agreement: average the confidences and add a bonus, clamped to 1.
	if facial.Label == voice.Label {
		conf := math.Min(1.0, (facial.Confidence+voice.Confidence)/2+agreementBonus)
		return domain.FusedState{Label: facial.Label, Confidence: conf}
	}

	facialScore := facial.Confidence * facialWeight
	voiceScore := voice.Confidence * voiceWeight

	// Compatible disagreement: the winner keeps partial credit from the
	// other channel.
	if facial.Label.CompatibleWith(voice.Label) {
		if facialScore >= voiceScore {
			return domain.FusedState{Label: facial.Label, Confidence: facialScore + voiceScore*partialCredit}
		}
		return domain.FusedState{Label: voice.Label, Confidence: voiceScore + facialScore*partialCredit}
	}

	// Genuine conflict: the winner is penalized for the disagreement.
	if facialScore >= voiceScore {
		return domain.FusedState{Label: facial.Label, Confidence: facialScore * conflictPenalty}
	}
	return domain.FusedState{Label: voice.Label, Confidence: voiceScore * conflictPenalty}
}

// smoothLabel computes a recency-weighted vote over the history window
// (oldest first) and returns the winning label. Entry i of L contributes
// confidence*(i+1)/L to its label's tally. On a tie, the label that first
// appears earliest in the window wins, which keeps the result deterministic.
func smoothLabel(history []domain.FusedState) domain.EmotionLabel {
	votes := make(map[domain.EmotionLabel]float64, len(history))
	order := make([]domain.EmotionLabel, 0, len(history))

	for i, entry := range history {
		if _, seen := votes[entry.Label]; !seen {
			order = append(order, entry.Label)
		}
		recency := float64(i+1) / float64(len(history))
		votes[entry.Label] += entry.Confidence * recency
	}

	best := order[0]
	for _, label := range order[1:] {
		if votes[label] > votes[best] {
			best = label
		}
	}
	return best
}
