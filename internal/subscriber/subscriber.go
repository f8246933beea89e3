// Package subscriber defines the raw-event delivery boundary of spec
// §6 and a NATS-backed adapter standing in for the "external
// collaborator" the spec treats the multi-chain log subscriber as.
package subscriber

import (
	"context"

	"github.com/chainrelay/correlator/internal/types"
)

// RawEvent is the structured tuple the subscriber delivers per event
// (spec §6): protocol, event kind, chain metadata, and a
// protocol-specific params map carrying the raw byte strings and
// integers the decoders require.
type RawEvent struct {
	Protocol    types.Protocol
	EventKind   types.EventKind
	ChainID     uint64
	Block       uint64
	Timestamp   uint64
	TxHash      string
	LogIndex    uint64
	Params      map[string]any
}

// Handler processes one raw event to completion. It must be
// idempotent: re-delivery of the same event produces identical final
// state (spec §5, I4).
type Handler func(ctx context.Context, ev RawEvent) error

// Subscriber delivers raw events to a Handler in per-entity-key
// serialized order (spec §5): for a single chain, block order and
// within-block log-index order; across chains, arbitrary interleaving.
type Subscriber interface {
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}
