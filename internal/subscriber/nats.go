package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chainrelay/correlator/internal/config"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSSubscriber consumes raw chain events from a NATS JetStream
// subject, following the teacher's internal/queue.NATSQueue
// connect/subscribe/ack pattern — repurposed here to carry inbound
// RawEvents instead of outgoing bridge messages.
type NATSSubscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
	logger  zerolog.Logger
}

// NewNATSSubscriber connects to NATS and prepares a JetStream context.
func NewNATSSubscriber(cfg config.SubscriberConfig, logger zerolog.Logger) (*NATSSubscriber, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("no subscriber URLs configured")
	}

	conn, err := nats.Connect(cfg.URLs[0],
		nats.Name("correlator"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return &NATSSubscriber{
		conn:    conn,
		js:      js,
		subject: cfg.Subject,
		logger:  logger.With().Str("component", "subscriber").Logger(),
	}, nil
}

// Subscribe drives handler for each delivered raw event. A nil return
// acks the message; any handler error naks it for redelivery after 5s.
// Engine.Dispatch returns nil for the events it skips (decode, config,
// state) and an error only for store failures, so with the engine as
// handler only store failures are redelivered. A message that does not
// unmarshal into a RawEvent is terminated.
func (s *NATSSubscriber) Subscribe(ctx context.Context, handler Handler) error {
	sub, err := s.js.QueueSubscribe(s.subject, "correlator-engine", func(m *nats.Msg) {
		var ev RawEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			s.logger.Error().Err(err).Msg("failed to unmarshal raw event")
			m.Term()
			return
		}

		if err := handler(ctx, ev); err != nil {
			s.logger.Error().
				Err(err).
				Str("protocol", string(ev.Protocol)).
				Str("event_kind", string(ev.EventKind)).
				Str("tx_hash", ev.TxHash).
				Msg("handler failed, nak for retry")
			m.NakWithDelay(5 * time.Second)
			return
		}

		m.Ack()
	}, nats.ManualAck(), nats.AckWait(30*time.Second))
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	<-ctx.Done()
	return sub.Unsubscribe()
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
