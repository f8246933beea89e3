package engine

import (
	"context"

	"github.com/chainrelay/correlator/internal/types"
)

// upsertOutboundEnvelope is C3's upsert_outbound: read-or-create the
// envelope at protocol:messageKey, fill outbound fields only where
// unset, merge route, recompute matched/latency.
func (e *Engine) upsertOutboundEnvelope(ctx context.Context, protocol types.Protocol, messageKey string, meta types.LegMeta, from types.Address, route types.RouteInfo) (*types.CrosschainMessage, error) {
	id := types.EnvelopeID(protocol, messageKey)
	m, ok, err := e.store.GetEnvelope(ctx, id)
	if err != nil {
		return nil, wrapStore("get_envelope", err)
	}
	if !ok {
		m = types.NewCrosschainMessage(protocol, messageKey)
	}

	m.ApplyOutbound(meta, from, route)

	if err := e.store.SetEnvelope(ctx, m); err != nil {
		return nil, wrapStore("set_envelope", err)
	}
	if m.Matched && m.Latency != nil {
		e.sink.EnvelopeMatched(string(protocol), *m.Latency)
	}
	return m, nil
}

// upsertInboundEnvelope is C3's upsert_inbound, symmetric to
// upsertOutboundEnvelope.
func (e *Engine) upsertInboundEnvelope(ctx context.Context, protocol types.Protocol, messageKey string, meta types.LegMeta, to types.Address, route types.RouteInfo) (*types.CrosschainMessage, error) {
	id := types.EnvelopeID(protocol, messageKey)
	m, ok, err := e.store.GetEnvelope(ctx, id)
	if err != nil {
		return nil, wrapStore("get_envelope", err)
	}
	if !ok {
		m = types.NewCrosschainMessage(protocol, messageKey)
	}

	m.ApplyInbound(meta, to, route)

	if err := e.store.SetEnvelope(ctx, m); err != nil {
		return nil, wrapStore("set_envelope", err)
	}
	if m.Matched && m.Latency != nil {
		e.sink.EnvelopeMatched(string(protocol), *m.Latency)
	}
	return m, nil
}
