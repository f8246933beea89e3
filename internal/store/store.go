// Package store defines the entity store boundary of spec §6: three
// operations (get, set, get_where) over four entity types, with two
// concrete adapters (in-memory and Postgres) standing in for the
// "external collaborator" the spec treats the entity store as.
//
// The generic get/set/get_where surface is expressed here as typed
// methods per entity — the design-notes translation of "dynamically
// typed parameter maps" into statically typed fields applies equally
// to the store boundary.
package store

import (
	"context"

	"github.com/chainrelay/correlator/internal/types"
)

// Store is the entity store the engine acts through. Implementations
// must make Set atomic within a single handler invocation and safe
// for concurrent use across different keys (spec §5).
type Store interface {
	GetEnvelope(ctx context.Context, id string) (*types.CrosschainMessage, bool, error)
	SetEnvelope(ctx context.Context, m *types.CrosschainMessage) error

	GetPayload(ctx context.Context, id string) (*types.AppPayload, bool, error)
	SetPayload(ctx context.Context, p *types.AppPayload) error
	// PayloadsByTransportingMessageID is the get_where(entity_type,
	// field, value) lookup bus coalescing uses to find inbound buffers.
	PayloadsByTransportingMessageID(ctx context.Context, transportingMessageID string) ([]*types.AppPayload, error)

	GetBusPreRecord(ctx context.Context, key string) (*types.BusRodeOftSentLfg, bool, error)
	SetBusPreRecord(ctx context.Context, r *types.BusRodeOftSentLfg) error

	GetBusDriven(ctx context.Context, envelopeID string) (*types.BusDrivenOftReceivedLfg, bool, error)
	SetBusDriven(ctx context.Context, d *types.BusDrivenOftReceivedLfg) error
	// GetBusDrivenByPassengerKey is a second get_where lookup over the
	// same entity, keyed by membership in PassengerKeys rather than by
	// EnvelopeID, so a pre-record that completes after its BusDriven
	// event already landed can find the staging record to reconcile.
	GetBusDrivenByPassengerKey(ctx context.Context, key string) (*types.BusDrivenOftReceivedLfg, bool, error)
}
