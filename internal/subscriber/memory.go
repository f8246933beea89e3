package subscriber

import "context"

// MemorySubscriber replays a fixed slice of events in order, for tests
// and for running the engine without a live NATS deployment.
type MemorySubscriber struct {
	events []RawEvent
}

// NewMemorySubscriber creates a subscriber that replays events in the
// given order and then blocks until the context is cancelled.
func NewMemorySubscriber(events []RawEvent) *MemorySubscriber {
	return &MemorySubscriber{events: events}
}

func (s *MemorySubscriber) Subscribe(ctx context.Context, handler Handler) error {
	for _, ev := range s.events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return nil
}

func (s *MemorySubscriber) Close() error { return nil }
