package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsProcessedTotal counts every raw event passed to the engine's
	// Dispatch, including events with no registered handler and events
	// the handler skipped.
	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "correlator_events_processed_total",
			Help: "Total number of raw chain events passed to the engine's dispatcher",
		},
		[]string{"protocol", "event_kind"},
	)

	// ErrorsTotal counts decode/config/state/store failures, labeled by
	// error kind and protocol.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "correlator_errors_total",
			Help: "Total number of handler failures by kind",
		},
		[]string{"kind", "protocol"},
	)

	// EnvelopeMatchLatency observes the outbound/inbound latency, which
	// may legitimately be negative, each time an envelope upsert leaves
	// the envelope matched; a redelivered leg of an already matched
	// envelope is observed again.
	EnvelopeMatchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "correlator_envelope_match_latency_seconds",
			Help:    "Observed inbound-minus-outbound latency of matched envelopes",
			Buckets: []float64{-60, -5, 0, 1, 5, 10, 30, 60, 300, 1800, 3600},
		},
		[]string{"protocol"},
	)

	// BusBufferBacklog is a gauge for the number of unresolved
	// StargateV2-inbound-buffer payloads per envelope. It is registered
	// but no code in this module sets it, so it always reads zero.
	BusBufferBacklog = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "correlator_bus_buffer_backlog",
			Help: "Number of unresolved inbound-buffer payloads per driven envelope",
		},
		[]string{"envelope_id"},
	)
)
