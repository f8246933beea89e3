package engine

import (
	"context"

	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/types"
)

func registerAcrossHandlers(register func(types.Protocol, types.EventKind, handlerFunc)) {
	register(types.ProtocolAcross, types.EventFundsDeposited, handleFundsDeposited)
	register(types.ProtocolAcross, types.EventFilledRelay, handleFilledRelay)
}

// handleFundsDeposited is the Across outbound leg: messageKey is
// "{originChainId}-{depositId}" with originChainId taken from the
// event's own chain id (§4.2).
func handleFundsDeposited(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	depositID, err := p.uint64("deposit_id")
	if err != nil {
		return err
	}
	inputToken, err := p.str("input_token")
	if err != nil {
		return err
	}
	inputAmount, err := p.bigInt("input_amount")
	if err != nil {
		return err
	}
	depositor, err := p.str("depositor")
	if err != nil {
		return err
	}
	recipient, err := p.str("recipient")
	if err != nil {
		return err
	}

	messageKey := identity.AcrossKey(ev.ChainID, depositID)
	envelopeID := types.EnvelopeID(types.ProtocolAcross, messageKey)
	meta := types.LegMeta{Block: ev.Block, Timestamp: ev.Timestamp, TxHash: ev.TxHash, ChainID: ev.ChainID}
	from := types.NormalizeAddress(depositor)

	if _, err := e.upsertOutboundEnvelope(ctx, types.ProtocolAcross, messageKey, meta, from, types.RouteInfo{}); err != nil {
		return err
	}

	leg := types.PayloadLeg{
		AssetAddress:  types.NormalizeAddress(inputToken),
		Amount:        inputAmount,
		Counterparty:  from,
		TargetAddress: types.NormalizeAddress(recipient),
	}
	_, err = e.upsertPayloadOutbound(ctx, envelopeID+"-0", types.AppAcross, types.PayloadTypeTransfer, types.ProtocolAcross, envelopeID, envelopeID, leg)
	return err
}

// handleFilledRelay is the Across inbound leg: messageKey is read
// directly from the event's explicit originChainId and depositId
// fields rather than the delivering chain's own id (§4.2).
func handleFilledRelay(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	depositID, err := p.uint64("deposit_id")
	if err != nil {
		return err
	}
	originChainID, err := p.uint64("origin_chain_id")
	if err != nil {
		return err
	}
	outputToken, err := p.str("output_token")
	if err != nil {
		return err
	}
	outputAmount, err := p.bigInt("output_amount")
	if err != nil {
		return err
	}
	recipient, err := p.str("recipient")
	if err != nil {
		return err
	}

	messageKey := identity.AcrossKey(originChainID, depositID)
	envelopeID := types.EnvelopeID(types.ProtocolAcross, messageKey)
	meta := types.LegMeta{Block: ev.Block, Timestamp: ev.Timestamp, TxHash: ev.TxHash, ChainID: ev.ChainID}
	to := types.NormalizeAddress(recipient)

	if _, err := e.upsertInboundEnvelope(ctx, types.ProtocolAcross, messageKey, meta, to, types.RouteInfo{}); err != nil {
		return err
	}

	leg := types.PayloadLeg{
		AssetAddress: types.NormalizeAddress(outputToken),
		Amount:       outputAmount,
		Counterparty: to,
	}
	_, err = e.upsertPayloadInbound(ctx, envelopeID+"-0", types.AppAcross, types.PayloadTypeTransfer, types.ProtocolAcross, envelopeID, envelopeID, leg)
	return err
}
