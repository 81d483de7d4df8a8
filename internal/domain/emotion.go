package domain

// EmotionLabel is one of the closed set of learner states the system reasons
// about. Both sensing channels map their own raw model vocabulary into this
// set, so every label seen past the sensor boundary is a member.
type EmotionLabel string

const (
	Confused    EmotionLabel = "confused"
	Overwhelmed EmotionLabel = "overwhelmed"
	Frustrated  EmotionLabel = "frustrated"
	Bored       EmotionLabel = "bored"
	Curious     EmotionLabel = "curious"
	Anxious     EmotionLabel = "anxious"
	Confident   EmotionLabel = "confident"
	Focused     EmotionLabel = "focused"
)

// allLabels fixes the canonical iteration order for the closed set.
var allLabels = []EmotionLabel{
	Confused, Overwhelmed, Frustrated, Bored,
	Curious, Anxious, Confident, Focused,
}

// Labels returns all emotion labels in canonical order. The returned slice
// is a copy and safe to mutate.
func Labels() []EmotionLabel {
	out := make([]EmotionLabel, len(allLabels))
	copy(out, allLabels)
	return out
}

// Valid reports whether the label is a member of the closed set.
func (l EmotionLabel) Valid() bool {
	for _, known := range allLabels {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLabel converts a raw string into an EmotionLabel, reporting whether
// it is a member of the closed set.
func ParseLabel(s string) (EmotionLabel, bool) {
	l := EmotionLabel(s)
	return l, l.Valid()
}

// compatibleEmotions lists, per label, the labels that plausibly co-occur
// with it. Used by fusion conflict resolution: a disagreement between
// adjacent labels is soft evidence, not a genuine conflict.
var compatibleEmotions = map[EmotionLabel][]EmotionLabel{
	Frustrated:  {Anxious, Overwhelmed},
	Anxious:     {Frustrated, Confused},
	Confused:    {Anxious, Curious},
	Curious:     {Focused, Confident},
	Focused:     {Confident, Curious},
	Confident:   {Focused, Curious},
	Bored:       {Overwhelmed},
	Overwhelmed: {Frustrated, Bored, Anxious},
}

// CompatibleWith reports whether other plausibly co-occurs with l.
// The relation is directed: it is looked up from the facial label's side.
func (l EmotionLabel) CompatibleWith(other EmotionLabel) bool {
	for _, c := range compatibleEmotions[l] {
		if c == other {
			return true
		}
	}
	return false
}

// EmotionSample is a single reading from one sensing channel. Present is
// false when the channel currently has no evidence (no face in frame,
// silence on the microphone, sidecar unreachable).
type EmotionSample struct {
	Label      EmotionLabel
	Confidence float64
	Present    bool
}

// FusedState is the fusion engine's current belief: one label from the
// closed set plus a confidence in [0,1]. Also used for the entries of the
// smoothing history window.
type FusedState struct {
	Label      EmotionLabel `json:"emotion"`
	Confidence float64      `json:"confidence"`
}

// DetailedState is a diagnostic snapshot of the whole fusion pipeline:
// both raw channel readings, the fused belief, and the smoothing history
// (oldest first).
type DetailedState struct {
	Facial  EmotionSample
	Voice   EmotionSample
	Fused   FusedState
	History []FusedState
}
