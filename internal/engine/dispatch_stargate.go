package engine

import (
	"context"

	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/types"
)

// registerStargateHandlers wires the OFT event kinds. OFTSent branches
// on its GUID at dispatch time (§4.6): zero GUID routes into bus
// coalescing (§4.5), non-zero GUID is a single-transfer taxi handled
// directly as a payload upsert. BusRode/BusDriven/OFTReceived are pure
// bus coalescing. All four are registered under the LayerZero protocol
// tag (there is no separate Stargate tag), since they ride on LayerZero
// transport; their OFT-specific event kinds keep them distinct from
// PacketSent/PacketDelivered.
func registerStargateHandlers(register func(types.Protocol, types.EventKind, handlerFunc)) {
	register(types.ProtocolLayerZero, types.EventOFTSent, handleOFTSent)
	register(types.ProtocolLayerZero, types.EventOFTReceived, handleOFTReceived)
	register(types.ProtocolLayerZero, types.EventBusRode, handleBusRode)
	register(types.ProtocolLayerZero, types.EventBusDriven, handleBusDriven)
}

// handleOFTSent is the dispatch-time branch of spec §4.6: a zero GUID
// means this passenger rode a bus and is handled by §4.5.2; any other
// GUID is a taxi transfer, upserted directly as a payload under the
// envelope the LayerZero packet handlers already maintain.
func handleOFTSent(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	guid, err := p.str("guid")
	if err != nil {
		return err
	}
	if identity.IsZeroGUID(guid) {
		return handleOFTSentZeroGUID(ctx, e, ev)
	}

	fromAddr, err := p.str("from_address")
	if err != nil {
		return err
	}
	amountSentLD, err := p.bigInt("amount_sent_ld")
	if err != nil {
		return err
	}

	envelopeID := types.EnvelopeID(types.ProtocolLayerZero, guid)
	taxiID := envelopeID + "-taxi"
	leg := types.PayloadLeg{
		Counterparty: types.NormalizeAddress(fromAddr),
		Amount:       amountSentLD,
	}
	_, err = e.upsertPayloadOutbound(ctx, taxiID, types.AppStargateV2Taxi, types.PayloadTypeTransfer, types.ProtocolLayerZero, envelopeID, envelopeID, leg)
	return err
}
