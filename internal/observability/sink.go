// Package observability implements the structured error sink and
// metrics surface of spec §6/§7, grounded on the teacher's
// internal/monitoring promauto pattern and its component-logger
// convention.
package observability

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Severity mirrors spec §6: "informational to warning; none are fatal
// to the process."
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// ErrorRecord is a structured error record emitted to the sink for a
// decode failure, unknown chain id, unexpected state transition, or
// store failure. Bus-mode receiver collisions are resolved first-hit
// and produce no record.
type ErrorRecord struct {
	ID        string
	Severity  Severity
	Kind      string // "decode", "config", "state", "store", "unknown"
	Protocol  string
	EventKind string
	TxHash    string
	Message   string
}

// Sink is the observability collaborator of spec §6.
type Sink interface {
	ReportError(rec ErrorRecord)
	EventProcessed(protocol, eventKind string)
	EnvelopeMatched(protocol string, latencySeconds int64)
}

// LogSink is the default Sink: structured zerolog records plus
// Prometheus counters, following internal/monitoring's label shape
// (protocol/chain-keyed vectors).
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a Sink that logs via the given logger and updates
// the package's Prometheus vectors.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "observability").Logger()}
}

func (s *LogSink) ReportError(rec ErrorRecord) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	ErrorsTotal.WithLabelValues(rec.Kind, rec.Protocol).Inc()

	ev := s.logger.Warn()
	if rec.Severity == SeverityInfo {
		ev = s.logger.Info()
	}
	ev.
		Str("error_id", rec.ID).
		Str("kind", rec.Kind).
		Str("protocol", rec.Protocol).
		Str("event_kind", rec.EventKind).
		Str("tx_hash", rec.TxHash).
		Msg(rec.Message)
}

func (s *LogSink) EventProcessed(protocol, eventKind string) {
	EventsProcessedTotal.WithLabelValues(protocol, eventKind).Inc()
}

func (s *LogSink) EnvelopeMatched(protocol string, latencySeconds int64) {
	EnvelopeMatchLatency.WithLabelValues(protocol).Observe(float64(latencySeconds))
}
