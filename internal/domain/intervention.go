package domain

import "time"

// InterventionType categorizes what an intervention asks the UI to do.
type InterventionType string

const (
	TypeHint      InterventionType = "hint"
	TypeSimplify  InterventionType = "simplify"
	TypeBreak     InterventionType = "break"
	TypeChallenge InterventionType = "challenge"
	TypeExplore   InterventionType = "explore"
	TypeReassure  InterventionType = "reassure"
	TypeEncourage InterventionType = "encourage"
	TypeSuppress  InterventionType = "suppress"
)

// Priority orders interventions when the UI has to choose.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Intervention is one pedagogical response emitted for a detected emotion.
// Message is nil for silent interventions (the focused-state tracking
// marker), which carry Silent=true and produce nothing visible.
type Intervention struct {
	Emotion   EmotionLabel     `json:"emotion"`
	Type      InterventionType `json:"type"`
	Priority  Priority         `json:"priority"`
	Message   *string          `json:"message"`
	Actions   []string         `json:"actions"`
	Timestamp time.Time        `json:"timestamp"`
	Topic     string           `json:"topic,omitempty"`
	Silent    bool             `json:"silent,omitempty"`
}

// InterventionContext carries optional study context that shapes the
// emitted message. Zero values mean "not provided".
type InterventionContext struct {
	Topic               string
	TimeStudyingMinutes int
}

// SessionStats is a read-only view over the interventions emitted since the
// current study session began.
type SessionStats struct {
	TotalInterventions int                  `json:"total_interventions"`
	EmotionDistribution map[EmotionLabel]int `json:"emotion_distribution"`
	InterventionCounts  map[EmotionLabel]int `json:"intervention_counts"`
}
