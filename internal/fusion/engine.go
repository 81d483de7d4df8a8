package fusion

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/studypulse/internal/domain"
	"github.com/pscheid92/studypulse/internal/metrics"
)

const (
	tickInterval = 500 * time.Millisecond
	historySize  = 5

	// defaultConfidence is the belief held before the first tick.
	defaultConfidence = 0.5
)

// Engine merges the two sensing channels into one FusedState on a fixed
// tick. State reads are atomic snapshots: label and confidence always come
// from the same tick, and the history never disagrees with the state
// mid-update.
type Engine struct {
	facial domain.Detector
	voice  domain.Detector
	clock  clockwork.Clock

	mu      sync.Mutex
	state   domain.FusedState
	history []domain.FusedState

	lifecycle sync.Mutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewEngine creates an engine over the two channels. The clock drives the
// fusion tick; pass a fake clock in tests.
func NewEngine(facial, voice domain.Detector, clock clockwork.Clock) *Engine {
	return &Engine{
		facial: facial,
		voice:  voice,
		clock:  clock,
		state:  domain.FusedState{Label: domain.Focused, Confidence: defaultConfidence},
	}
}

// Start brings up both channels and begins the fusion tick if at least one
// of them came up. It reports whether fusion is now active. Calling Start
// on a running engine is a no-op returning true.
func (e *Engine) Start() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.running {
		return true
	}

	facialUp := e.facial.Start()
	voiceUp := e.voice.Start()
	if !facialUp && !voiceUp {
		slog.Warn("fusion not started: no sensing channel came up")
		return false
	}

	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	go e.run()

	slog.Info("fusion started", "facial", facialUp, "voice", voiceUp)
	return true
}

// Stop halts the fusion tick and both channels. It blocks until the tick
// goroutine has exited, so no tick runs after Stop returns. Safe to call
// when not running.
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if !e.running {
		return
	}
	e.running = false
	close(e.stopCh)
	<-e.doneCh

	e.facial.Stop()
	e.voice.Stop()
	slog.Info("fusion stopped")
}

func (e *Engine) run() {
	defer close(e.doneCh)

	ticker := e.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.Chan():
			e.tick()
		}
	}
}

// tick performs one fusion pass. A fault anywhere in the pass is swallowed:
// the previous state stays visible and the next tick tries again.
func (e *Engine) tick() {
	defer func() {
		if r := recover(); r != nil {
			metrics.FusionTickFailures.Inc()
			slog.Debug("fusion tick abandoned", "cause", r)
		}
	}()

	facial := e.facial.Current()
	voice := e.voice.Current()
	fused := fuse(facial, voice)

	e.mu.Lock()
	e.history = append(e.history, fused)
	if len(e.history) > historySize {
		e.history = e.history[len(e.history)-historySize:]
	}
	// The label is smoothed over the window; the confidence stays the raw
	// fuse output of this tick.
	e.state = domain.FusedState{
		Label:      smoothLabel(e.history),
		Confidence: fused.Confidence,
	}
	state := e.state
	e.mu.Unlock()

	metrics.FusionTicksTotal.Inc()
	metrics.FusedConfidence.Set(state.Confidence)
	for _, label := range domain.Labels() {
		v := 0.0
		if label == state.Label {
			v = 1.0
		}
		metrics.FusedEmotion.WithLabelValues(string(label)).Set(v)
	}
}

// Current returns the fused belief as an atomic snapshot.
func (e *Engine) Current() domain.FusedState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Detailed returns both raw channel readings, the fused state, and a copy
// of the smoothing history (oldest first).
func (e *Engine) Detailed() domain.DetailedState {
	facial := e.facial.Current()
	voice := e.voice.Current()

	e.mu.Lock()
	defer e.mu.Unlock()

	history := make([]domain.FusedState, len(e.history))
	copy(history, e.history)

	return domain.DetailedState{
		Facial:  facial,
		Voice:   voice,
		Fused:   e.state,
		History: history,
	}
}
