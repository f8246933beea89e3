package engine

import (
	"context"

	"github.com/chainrelay/correlator/internal/decode"
	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/types"
)

func registerAgglayerHandlers(register func(types.Protocol, types.EventKind, handlerFunc)) {
	register(types.ProtocolAgglayer, types.EventBridgeEvent, handleBridgeEvent)
	register(types.ProtocolAgglayer, types.EventClaimEvent, handleClaimEvent)
}

// handleBridgeEvent is the Agglayer outbound leg: depositCount is
// carried directly on the bridge event (§4.2).
func handleBridgeEvent(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	assetOriginNetwork, err := p.uint32("asset_origin_network")
	if err != nil {
		return err
	}
	assetOriginAddress, err := p.str("asset_origin_address")
	if err != nil {
		return err
	}
	destinationAddress, err := p.str("destination_address")
	if err != nil {
		return err
	}
	amount, err := p.bigInt("amount")
	if err != nil {
		return err
	}
	depositCount, err := p.uint32("deposit_count")
	if err != nil {
		return err
	}
	depositor := p.strOr("depositor", "")

	messageKey := identity.AgglayerKey(assetOriginNetwork, assetOriginAddress, destinationAddress, amount, depositCount)
	envelopeID := types.EnvelopeID(types.ProtocolAgglayer, messageKey)
	meta := types.LegMeta{Block: ev.Block, Timestamp: ev.Timestamp, TxHash: ev.TxHash, ChainID: ev.ChainID}
	from := types.NormalizeAddress(depositor)

	if _, err := e.upsertOutboundEnvelope(ctx, types.ProtocolAgglayer, messageKey, meta, from, types.RouteInfo{}); err != nil {
		return err
	}

	leg := types.PayloadLeg{
		AssetAddress:  types.NormalizeAddress(assetOriginAddress),
		Amount:        amount,
		Counterparty:  from,
		TargetAddress: types.NormalizeAddress(destinationAddress),
	}
	_, err = e.upsertPayloadOutbound(ctx, envelopeID+"-0", types.AppAgglayer, types.PayloadTypeTransfer, types.ProtocolAgglayer, envelopeID, envelopeID, leg)
	return err
}

// handleClaimEvent is the Agglayer inbound leg: depositCount is not
// carried directly but equals localRootIndex extracted from the
// claim's globalIndex bitfield (§4.2).
func handleClaimEvent(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	assetOriginNetwork, err := p.uint32("asset_origin_network")
	if err != nil {
		return err
	}
	assetOriginAddress, err := p.str("asset_origin_address")
	if err != nil {
		return err
	}
	destinationAddress, err := p.str("destination_address")
	if err != nil {
		return err
	}
	amount, err := p.bigInt("amount")
	if err != nil {
		return err
	}
	globalIndexRaw, err := p.str("global_index")
	if err != nil {
		return err
	}

	globalIndex, err := decode.DecodeGlobalIndex(globalIndexRaw)
	if err != nil {
		return err
	}

	messageKey := identity.AgglayerKey(assetOriginNetwork, assetOriginAddress, destinationAddress, amount, globalIndex.LocalRootIndex)
	envelopeID := types.EnvelopeID(types.ProtocolAgglayer, messageKey)
	meta := types.LegMeta{Block: ev.Block, Timestamp: ev.Timestamp, TxHash: ev.TxHash, ChainID: ev.ChainID}
	to := types.NormalizeAddress(destinationAddress)

	if _, err := e.upsertInboundEnvelope(ctx, types.ProtocolAgglayer, messageKey, meta, to, types.RouteInfo{}); err != nil {
		return err
	}

	leg := types.PayloadLeg{
		AssetAddress: types.NormalizeAddress(assetOriginAddress),
		Amount:       amount,
		Counterparty: to,
	}
	_, err = e.upsertPayloadInbound(ctx, envelopeID+"-0", types.AppAgglayer, types.PayloadTypeTransfer, types.ProtocolAgglayer, envelopeID, envelopeID, leg)
	return err
}
