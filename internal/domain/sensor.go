package domain

// Detector is the boundary to one sensing channel (facial expression or
// voice prosody). Implementations sample on their own background cadence;
// Current never blocks on sampling and returns whatever the channel last
// published.
type Detector interface {
	// Start begins background sampling and reports whether the channel
	// could be brought up. A false return is a degraded mode, not an error:
	// the channel simply contributes no evidence.
	Start() bool

	// Stop halts background sampling. Safe to call when not running.
	Stop()

	// Current returns the channel's most recent sample.
	Current() EmotionSample
}
