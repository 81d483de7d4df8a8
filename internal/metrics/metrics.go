package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fusion Engine Metrics
var (
	// FusionTicksTotal counts completed fusion ticks.
	FusionTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fusion_ticks_total",
			Help: "Total completed fusion ticks",
		},
	)

	// FusionTickFailures counts fusion ticks abandoned due to a fault.
	FusionTickFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fusion_tick_failures_total",
			Help: "Fusion ticks abandoned due to a sensor or compute fault",
		},
	)

	// FusedEmotion tracks the current fused emotion (1 for the active label,
	// 0 for the rest).
	FusedEmotion = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fused_emotion",
			Help: "Current fused emotion label (1=active)",
		},
		[]string{"emotion"},
	)

	// FusedConfidence tracks the current fused confidence.
	FusedConfidence = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fused_confidence",
			Help: "Current fused emotion confidence (0-1)",
		},
	)
)

// Sensor Adapter Metrics
var (
	// SensorReadsTotal counts sensor sidecar reads by channel and status.
	SensorReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_reads_total",
			Help: "Sensor sidecar reads by channel and status",
		},
		[]string{"channel", "status"},
	)

	// SensorBreakerState tracks circuit breaker state per channel
	// (0=closed, 1=half-open, 2=open).
	SensorBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_breaker_state",
			Help: "Sensor circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"channel"},
	)
)

// Intervention Engine Metrics
var (
	// InterventionsEmitted counts emitted interventions by emotion and type.
	InterventionsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interventions_emitted_total",
			Help: "Interventions emitted by emotion and type",
		},
		[]string{"emotion", "type"},
	)

	// InterventionsSuppressed counts intervention requests that produced
	// nothing, by emotion and reason (cooldown, no_config, focused_gate).
	InterventionsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interventions_suppressed_total",
			Help: "Intervention requests that produced nothing, by reason",
		},
		[]string{"emotion", "reason"},
	)
)

// Broadcaster Metrics
var (
	// BroadcasterConnectedClients tracks connected WebSocket clients.
	BroadcasterConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcaster_connected_clients",
			Help: "Number of connected WebSocket clients",
		},
	)

	// BroadcasterDroppedMessages counts messages dropped due to slow clients.
	BroadcasterDroppedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcaster_dropped_messages_total",
			Help: "Broadcast messages dropped because a client send queue was full",
		},
	)
)
