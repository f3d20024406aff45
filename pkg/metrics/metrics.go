// Package metrics declares the server's Prometheus collectors. cmd/server
// registers promhttp.Handler() on /metrics; every collector here is
// promauto-registered against the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_sessions_active",
		Help: "Currently live WebSocket sessions",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_sessions_total",
		Help: "Total sessions accepted",
	})

	SessionsIdleClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_sessions_idle_closed_total",
		Help: "Sessions torn down by the idle-timeout sweep",
	})

	TurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_turns_total",
		Help: "Total user turns started",
	})

	TurnsInterrupted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_turns_interrupted_total",
		Help: "Turns ended by barge-in or explicit interrupt",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "realtime_stage_duration_seconds",
		Help:    "Per-stage latency (stt, llm_first_token, tts_first_chunk)",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0, 5.0},
	}, []string{"stage"})

	EndToEndLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "realtime_e2e_latency_seconds",
		Help:    "Speech-end to first TTS audio chunk",
		Buckets: []float64{0.1, 0.2, 0.5, 0.8, 1.0, 1.5, 2.0, 3.0, 5.0},
	})

	AdapterErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_adapter_errors_total",
		Help: "Adapter errors by kind and provider",
	}, []string{"adapter", "kind"})

	ClientProtocolErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_client_protocol_errors_total",
		Help: "Malformed frames and unknown commands received",
	})

	InboundAudioFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_inbound_audio_frames_total",
		Help: "InboundAudioFrames received across all sessions",
	})

	OutboundQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_outbound_queue_depth",
		Help: "Combined depth of all sessions' outbound scheduler queues",
	})

	OutboundDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_outbound_dropped_total",
		Help: "Outbound items dropped by a full queue or a stale epoch at delivery",
	})
)
