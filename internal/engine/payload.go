package engine

import (
	"context"

	"github.com/chainrelay/correlator/internal/types"
)

// upsertPayloadOutbound is C4's upsert_payload_outbound: read-or-create
// the payload, preserve any existing inbound fields, recompute
// matched.
func (e *Engine) upsertPayloadOutbound(ctx context.Context, id string, app types.App, payloadType types.PayloadType, transportingProtocol types.Protocol, transportingMessageID, envelopeID string, leg types.PayloadLeg) (*types.AppPayload, error) {
	p, ok, err := e.store.GetPayload(ctx, id)
	if err != nil {
		return nil, wrapStore("get_payload", err)
	}
	if !ok {
		p = types.NewAppPayload(id, app, payloadType, transportingProtocol, transportingMessageID, envelopeID)
	}

	p.ApplyOutbound(leg)

	if err := e.store.SetPayload(ctx, p); err != nil {
		return nil, wrapStore("set_payload", err)
	}
	return p, nil
}

// upsertPayloadInbound is C4's upsert_payload_inbound, symmetric to
// upsertPayloadOutbound.
func (e *Engine) upsertPayloadInbound(ctx context.Context, id string, app types.App, payloadType types.PayloadType, transportingProtocol types.Protocol, transportingMessageID, envelopeID string, leg types.PayloadLeg) (*types.AppPayload, error) {
	p, ok, err := e.store.GetPayload(ctx, id)
	if err != nil {
		return nil, wrapStore("get_payload", err)
	}
	if !ok {
		p = types.NewAppPayload(id, app, payloadType, transportingProtocol, transportingMessageID, envelopeID)
	}

	p.ApplyInbound(leg)

	if err := e.store.SetPayload(ctx, p); err != nil {
		return nil, wrapStore("set_payload", err)
	}
	return p, nil
}
