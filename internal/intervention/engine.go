package intervention

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/studypulse/internal/domain"
	"github.com/pscheid92/studypulse/internal/metrics"
)

// longStudyThresholdMinutes is the study duration past which simplify and
// break interventions get an encouragement suffix.
const longStudyThresholdMinutes = 45

// Engine decides whether a detected emotion warrants an intervention right
// now. All state is per study session and cleared by ResetSession. The
// engine serializes its own access, so concurrent HTTP callers cannot lose
// cooldown or rotation updates.
type Engine struct {
	clock clockwork.Clock

	mu               sync.Mutex
	lastIntervention map[domain.EmotionLabel]time.Time
	counts           map[domain.EmotionLabel]int
	sessionLog       []domain.Intervention
}

// NewEngine validates the static tables and creates an engine. The clock
// drives cooldown timing; pass a fake clock in tests.
func NewEngine(clock clockwork.Clock) (*Engine, error) {
	if err := validateTables(); err != nil {
		return nil, fmt.Errorf("intervention engine: %w", err)
	}
	return &Engine{
		clock:            clock,
		lastIntervention: make(map[domain.EmotionLabel]time.Time),
		counts:           make(map[domain.EmotionLabel]int),
	}, nil
}

// GetIntervention returns an intervention for the emotion, or nil when
// none is warranted (unknown label, cooldown, or focused suppression).
// It never fails: nil is a valid, frequent outcome.
func (e *Engine) GetIntervention(emotion domain.EmotionLabel, ictx domain.InterventionContext) *domain.Intervention {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, ok := catalog[emotion]
	if !ok {
		metrics.InterventionsSuppressed.WithLabelValues(string(emotion), "no_config").Inc()
		return nil
	}

	now := e.clock.Now()

	if last, ok := e.lastIntervention[emotion]; ok && now.Sub(last) < cooldownFor(emotion) {
		metrics.InterventionsSuppressed.WithLabelValues(string(emotion), "cooldown").Inc()
		return nil
	}

	// Focused learners are not interrupted: at most a silent tracking
	// marker every ten minutes, which never reaches the session log.
	if emotion == domain.Focused {
		return e.handleFocusedLocked(now)
	}

	if len(cfg.Messages) == 0 {
		metrics.InterventionsSuppressed.WithLabelValues(string(emotion), "no_messages").Inc()
		return nil
	}

	message := cfg.Messages[e.counts[emotion]%len(cfg.Messages)]
	e.counts[emotion]++
	e.lastIntervention[emotion] = now

	iv := domain.Intervention{
		Emotion:   emotion,
		Type:      cfg.Type,
		Priority:  cfg.Priority,
		Message:   &message,
		Actions:   cfg.Actions,
		Timestamp: now,
	}
	applyContext(&iv, ictx)

	e.sessionLog = append(e.sessionLog, iv)
	metrics.InterventionsEmitted.WithLabelValues(string(emotion), string(cfg.Type)).Inc()
	return &iv
}

// handleFocusedLocked emits the silent focus marker when the last one is
// at least focusMarkInterval old (or was never set). Must hold e.mu.
func (e *Engine) handleFocusedLocked(now time.Time) *domain.Intervention {
	if last, ok := e.lastIntervention[domain.Focused]; ok && now.Sub(last) < focusMarkInterval {
		metrics.InterventionsSuppressed.WithLabelValues(string(domain.Focused), "focused_gate").Inc()
		return nil
	}

	e.lastIntervention[domain.Focused] = now
	metrics.InterventionsEmitted.WithLabelValues(string(domain.Focused), string(domain.TypeSuppress)).Inc()
	return &domain.Intervention{
		Emotion:   domain.Focused,
		Type:      domain.TypeSuppress,
		Priority:  domain.PriorityLow,
		Message:   nil,
		Actions:   []string{"track_focus_duration"},
		Timestamp: now,
		Silent:    true,
	}
}

// applyContext shapes the intervention with optional study context: hints
// carry the current topic, and long study sessions earn an encouragement
// suffix on simplify/break messages.
func applyContext(iv *domain.Intervention, ictx domain.InterventionContext) {
	if ictx.Topic != "" && iv.Type == domain.TypeHint {
		iv.Topic = ictx.Topic
	}

	if ictx.TimeStudyingMinutes > longStudyThresholdMinutes &&
		(iv.Type == domain.TypeSimplify || iv.Type == domain.TypeBreak) && iv.Message != nil {
		suffixed := fmt.Sprintf("%s\n(You've been studying for %d minutes - great dedication!)",
			*iv.Message, ictx.TimeStudyingMinutes)
		iv.Message = &suffixed
	}
}

// SessionStats returns a derived view over the current session's log and
// rotation counters.
func (e *Engine) SessionStats() domain.SessionStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	distribution := make(map[domain.EmotionLabel]int)
	for _, iv := range e.sessionLog {
		distribution[iv.Emotion]++
	}

	counts := make(map[domain.EmotionLabel]int, len(e.counts))
	for label, n := range e.counts {
		counts[label] = n
	}

	return domain.SessionStats{
		TotalInterventions:  len(e.sessionLog),
		EmotionDistribution: distribution,
		InterventionCounts:  counts,
	}
}

// ResetSession clears cooldowns, rotation counters, and the session log in
// one atomic step. Called exactly when a new study session begins.
func (e *Engine) ResetSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastIntervention = make(map[domain.EmotionLabel]time.Time)
	e.counts = make(map[domain.EmotionLabel]int)
	e.sessionLog = nil
}
