// Package sensor adapts remote emotion-detector sidecars to the Detector
// boundary.
//
// The facial and voice models run out of process; each adapter polls its
// sidecar's /emotion endpoint on the channel's own cadence, maps the
// model's raw vocabulary into the canonical label set, and holds the latest
// sample for lock-free-feeling reads. A circuit breaker keeps a dead
// sidecar from being hammered; while it is open the channel simply reports
// no evidence.
package sensor
