package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/studypulse/internal/correlation"
	"github.com/pscheid92/studypulse/internal/domain"
)

// DefaultRecorderInterval is how often the recorder persists the fused state.
const DefaultRecorderInterval = 5 * time.Second

// Recorder periodically persists the fused emotional state to the emotion
// log while a study session is active and detection is running. These rows
// feed the history endpoint and later trend analysis.
type Recorder struct {
	service  *Service
	logs     domain.EmotionLogRepository
	clock    clockwork.Clock
	interval time.Duration
}

func NewRecorder(service *Service, logs domain.EmotionLogRepository, clock clockwork.Clock, interval time.Duration) *Recorder {
	if interval <= 0 {
		interval = DefaultRecorderInterval
	}
	return &Recorder{
		service:  service,
		logs:     logs,
		clock:    clock,
		interval: interval,
	}
}

// Run starts the periodic recording loop. It blocks until ctx is cancelled.
func (r *Recorder) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.record(ctx)
		}
	}
}

func (r *Recorder) record(ctx context.Context) {
	session := r.service.CurrentSession()
	if session == nil || !r.service.DetectionActive() {
		return
	}

	tickCtx := correlation.WithID(ctx, correlation.NewID())

	detailed := r.service.DetailedEmotion()
	log := &domain.EmotionLog{
		UserID:     session.UserID,
		SessionID:  &session.ID,
		Emotion:    detailed.Fused.Label,
		Confidence: detailed.Fused.Confidence,
		Source:     "fused",
		Timestamp:  r.clock.Now().UTC(),
	}
	if detailed.Facial.Present {
		label, conf := detailed.Facial.Label, detailed.Facial.Confidence
		log.FacialEmotion, log.FacialConfidence = &label, &conf
	}
	if detailed.Voice.Present {
		label, conf := detailed.Voice.Label, detailed.Voice.Confidence
		log.VoiceEmotion, log.VoiceConfidence = &label, &conf
	}

	if err := r.logs.Insert(tickCtx, log); err != nil {
		slog.WarnContext(tickCtx, "Recorder: insert failed", "session", session.ID, "error", err)
		return
	}

	slog.DebugContext(tickCtx, "Recorder: state persisted",
		"session", session.ID, "emotion", log.Emotion, "confidence", log.Confidence)
}
