package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/studypulse/internal/domain"
	"github.com/pscheid92/studypulse/internal/metrics"
	"github.com/pscheid92/studypulse/internal/retry"
	"github.com/sony/gobreaker"
)

const (
	// FacialInterval is the facial channel's sampling cadence.
	FacialInterval = 1 * time.Second
	// DefaultChunkDuration is the voice channel's audio chunk length, which
	// is also its sampling cadence.
	DefaultChunkDuration = 2 * time.Second

	requestTimeout      = 2 * time.Second
	breakerOpenTimeout  = 10 * time.Second
	consecutiveFailTrip = 5
	startProbeAttempts  = 3
	startProbeBackoff   = 200 * time.Millisecond
)

// reading is the sidecar wire format. A null label means the model
// currently detects nothing (no face in frame, silence).
type reading struct {
	Label      *string `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Remote is a Detector backed by a remote detector sidecar.
type Remote struct {
	name     string
	url      string
	interval time.Duration
	vocab    map[string]domain.EmotionLabel
	client   *http.Client
	clock    clockwork.Clock
	breaker  *gobreaker.CircuitBreaker

	mu     sync.Mutex
	sample domain.EmotionSample

	lifecycle sync.Mutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewFacial creates the facial-expression channel adapter.
func NewFacial(url string, clock clockwork.Clock) *Remote {
	return newRemote("facial", url, FacialInterval, facialVocabulary, clock)
}

// NewVoice creates the voice-prosody channel adapter. chunkDuration is the
// sidecar's audio chunk length; zero means DefaultChunkDuration.
func NewVoice(url string, chunkDuration time.Duration, clock clockwork.Clock) *Remote {
	if chunkDuration <= 0 {
		chunkDuration = DefaultChunkDuration
	}
	return newRemote("voice", url, chunkDuration, voiceVocabulary, clock)
}

func newRemote(name, url string, interval time.Duration, vocab map[string]domain.EmotionLabel, clock clockwork.Clock) *Remote {
	r := &Remote{
		name:     name,
		url:      url,
		interval: interval,
		vocab:    vocab,
		client:   &http.Client{Timeout: requestTimeout},
		clock:    clock,
	}

	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SensorBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			slog.Warn("sensor breaker state changed", "channel", name, "from", from.String(), "to", to.String())
		},
	})

	return r
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Start probes the sidecar and begins background sampling. A false return
// means the sidecar is unreachable; the channel then contributes no
// evidence but the rest of the system keeps running.
func (r *Remote) Start() bool {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if r.running {
		return true
	}

	probe := retry.Policy{
		MaxAttempts:    startProbeAttempts,
		InitialBackoff: startProbeBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Debug("sensor probe retry", "channel", r.name, "attempt", attempt, "error", err, "backoff", backoff)
		},
	}
	if _, err := retry.Do(context.Background(), probe, r.read); err != nil {
		slog.Warn("sensor unavailable", "channel", r.name, "url", r.url, "error", err)
		return false
	}

	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	go r.run()

	slog.Info("sensor started", "channel", r.name, "interval", r.interval)
	return true
}

// Stop halts background sampling. Safe to call when not running.
func (r *Remote) Stop() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)
	<-r.doneCh
	slog.Info("sensor stopped", "channel", r.name)
}

// Current returns the latest published sample without blocking on sampling.
func (r *Remote) Current() domain.EmotionSample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sample
}

func (r *Remote) run() {
	defer close(r.doneCh)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.Chan():
			sample, err := r.read()
			if err != nil {
				// An unreachable sidecar stops contributing evidence
				// instead of serving an ever-staler sample.
				metrics.SensorReadsTotal.WithLabelValues(r.name, "error").Inc()
				sample = domain.EmotionSample{}
			} else {
				metrics.SensorReadsTotal.WithLabelValues(r.name, "ok").Inc()
			}
			r.mu.Lock()
			r.sample = sample
			r.mu.Unlock()
		}
	}
}

// read fetches one sample through the circuit breaker.
func (r *Remote) read() (domain.EmotionSample, error) {
	result, err := r.breaker.Execute(func() (any, error) {
		return r.fetch()
	})
	if err != nil {
		return domain.EmotionSample{}, err
	}
	return result.(domain.EmotionSample), nil
}

func (r *Remote) fetch() (domain.EmotionSample, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+"/emotion", nil)
	if err != nil {
		return domain.EmotionSample{}, fmt.Errorf("failed to build sensor request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.EmotionSample{}, fmt.Errorf("sensor request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.EmotionSample{}, fmt.Errorf("sensor returned status %d", resp.StatusCode)
	}

	var rd reading
	if err := json.NewDecoder(resp.Body).Decode(&rd); err != nil {
		return domain.EmotionSample{}, fmt.Errorf("failed to decode sensor response: %w", err)
	}

	// No detection is a valid reading, not an error.
	if rd.Label == nil || *rd.Label == "" {
		return domain.EmotionSample{}, nil
	}

	label, ok := mapLabel(r.vocab, *rd.Label)
	if !ok {
		slog.Debug("dropping unknown sensor label", "channel", r.name, "label", *rd.Label)
		return domain.EmotionSample{}, nil
	}

	return domain.EmotionSample{Label: label, Confidence: clamp01(rd.Confidence), Present: true}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
