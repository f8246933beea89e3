package engine

import (
	"context"
	"strings"
	"time"

	"github.com/chainrelay/correlator/internal/decode"
	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/types"
	"github.com/chainrelay/correlator/internal/xerrors"
)

// busPassengerID is the terminal per-passenger payload id: the
// (lowercased) StargateV2-bus-passenger app tag, not the transport
// protocol, followed by the stable "srcEid:dstEid:ticketId" key
// (spec §3, worked example S4).
func busPassengerID(key string) string {
	return strings.ToLower(string(types.AppStargateV2BusPassenger)) + ":" + key
}

// handleBusRode is §4.5 step 1: merge the decoded passenger tuple into
// the tx-hash-keyed pre-record, creating it if absent. If the token
// side already landed (OFTSent arrived first), this completes the
// pre-record: it is re-keyed to the stable id and any staged
// BusDriven reconciliation is retried immediately.
func handleBusRode(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	txHash, err := p.str("tx_hash")
	if err != nil {
		return err
	}
	dstEid, err := p.uint32("dst_eid")
	if err != nil {
		return err
	}
	ticketID, err := p.uint64("ticket_id")
	if err != nil {
		return err
	}
	passengerRaw, err := p.str("passenger")
	if err != nil {
		return err
	}
	fare := p.bigIntOpt("fare")

	decoded, err := decode.DecodeBusPassenger(passengerRaw)
	if err != nil {
		return err
	}

	srcEid, err := e.chains.EidForChainID(ev.ChainID)
	if err != nil {
		return err
	}

	pre, ok, err := e.store.GetBusPreRecord(ctx, txHash)
	if err != nil {
		return wrapStore("get_bus_pre_record", err)
	}
	if !ok {
		pre = &types.BusRodeOftSentLfg{Key: txHash}
	}

	pre.HasPassenger = true
	pre.Passenger = types.BusPassenger{
		AssetID:    decoded.AssetID,
		Receiver:   types.NormalizeAddress(decoded.Receiver),
		AmountSD:   decoded.AmountSD,
		NativeDrop: decoded.NativeDrop,
	}
	pre.Fare = fare
	pre.SrcEid = srcEid
	pre.DstEid = dstEid
	pre.TicketID = ticketID
	pre.UpdatedAt = time.Now()

	rekeyed := false
	if pre.HasTokenData {
		pre.Key = types.StableKey(pre.SrcEid, pre.DstEid, pre.TicketID)
		rekeyed = true
	}

	if err := e.store.SetBusPreRecord(ctx, pre); err != nil {
		return wrapStore("set_bus_pre_record", err)
	}
	if !rekeyed {
		return nil
	}
	return retryBusDrivenReconcile(ctx, e, pre.Key)
}

// handleOFTSentZeroGUID is §4.5 step 2. A zero GUID marks the batched
// case; the record is re-keyed to the stable (srcEid, dstEid, ticketId)
// triple once passenger fields are already present, otherwise the
// token fields are written at the tx-hash key to await BusRode. A
// re-key also retries any staged BusDriven reconciliation waiting on
// this passenger.
func handleOFTSentZeroGUID(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	txHash, err := p.str("tx_hash")
	if err != nil {
		return err
	}
	fromAddr, err := p.str("from_address")
	if err != nil {
		return err
	}
	amountSentLD := p.bigIntOpt("amount_sent_ld")

	pre, ok, err := e.store.GetBusPreRecord(ctx, txHash)
	if err != nil {
		return wrapStore("get_bus_pre_record", err)
	}
	if !ok {
		pre = &types.BusRodeOftSentLfg{Key: txHash}
	}

	pre.HasTokenData = true
	pre.FromAddress = types.NormalizeAddress(fromAddr)
	pre.AmountSentLD = amountSentLD
	pre.UpdatedAt = time.Now()

	rekeyed := false
	if pre.HasPassenger {
		pre.Key = types.StableKey(pre.SrcEid, pre.DstEid, pre.TicketID)
		rekeyed = true
	}
	if err := e.store.SetBusPreRecord(ctx, pre); err != nil {
		return wrapStore("set_bus_pre_record", err)
	}
	if !rekeyed {
		return nil
	}
	return retryBusDrivenReconcile(ctx, e, pre.Key)
}

// retryBusDrivenReconcile looks up the BusDriven staging record (if
// any) awaiting the given stable passenger key and retries matching it
// against pending inbound buffers. Called whenever a pre-record
// completes after its BusDriven event has already arrived.
func retryBusDrivenReconcile(ctx context.Context, e *Engine, passengerKey string) error {
	driven, ok, err := e.store.GetBusDrivenByPassengerKey(ctx, passengerKey)
	if err != nil {
		return wrapStore("get_bus_driven_by_passenger_key", err)
	}
	if !ok {
		return nil
	}
	return reconcileBusDriven(ctx, e, driven)
}

// handleBusDriven is §4.5 step 3: compute the passenger id range and
// the envelope id, persist the driven staging record unconditionally
// (so a pre-record that completes later can always find it via
// retryBusDrivenReconcile), then attempt to reconcile it against any
// inbound buffers that already exist.
func handleBusDriven(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	guid, err := p.str("guid")
	if err != nil {
		return err
	}
	startTicketID, err := p.uint64("start_ticket_id")
	if err != nil {
		return err
	}
	numPassengers, err := p.uint64("num_passengers")
	if err != nil {
		return err
	}
	dstEid, err := p.uint32("dst_eid")
	if err != nil {
		return err
	}
	if identity.IsZeroGUID(guid) {
		return xerrors.State("BusDriven carries the zero GUID sentinel")
	}

	srcEid, err := e.chains.EidForChainID(ev.ChainID)
	if err != nil {
		return err
	}

	envelopeID := types.EnvelopeID(types.ProtocolLayerZero, guid)
	keys := make([]string, 0, numPassengers)
	for ticketID := startTicketID; ticketID < startTicketID+numPassengers; ticketID++ {
		keys = append(keys, types.StableKey(srcEid, dstEid, ticketID))
	}

	driven := &types.BusDrivenOftReceivedLfg{
		EnvelopeID:    envelopeID,
		SrcEid:        srcEid,
		DstEid:        dstEid,
		PassengerKeys: keys,
		UpdatedAt:     time.Now(),
	}
	if err := e.store.SetBusDriven(ctx, driven); err != nil {
		return wrapStore("set_bus_driven", err)
	}

	return reconcileBusDriven(ctx, e, driven)
}

// reconcileBusDriven matches whichever pre-records are currently
// available against whichever inbound buffers are currently pending
// for a driven envelope. A passenger whose pre-record or buffer hasn't
// landed yet is simply skipped — the driven staging record persisted
// by handleBusDriven remains in place so a later-arriving BusRode,
// OFTSent, or OFTReceived can complete the match (§4.5 step 3).
func reconcileBusDriven(ctx context.Context, e *Engine, driven *types.BusDrivenOftReceivedLfg) error {
	buffers, err := e.store.PayloadsByTransportingMessageID(ctx, driven.EnvelopeID)
	if err != nil {
		return wrapStore("get_where_payload", err)
	}
	var pending []*types.AppPayload
	for _, b := range buffers {
		if b.App == types.AppStargateV2InboundBuffer {
			pending = append(pending, b)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	used := make(map[string]bool, len(pending))
	for _, key := range driven.PassengerKeys {
		pre, ok, err := e.store.GetBusPreRecord(ctx, key)
		if err != nil {
			return wrapStore("get_bus_pre_record", err)
		}
		if !ok || !pre.HasPassenger {
			continue
		}
		for _, b := range pending {
			if used[b.ID] {
				continue
			}
			if b.InboundRecipient != pre.Passenger.Receiver {
				continue
			}

			terminalID := busPassengerID(key)
			terminal, ok, err := e.store.GetPayload(ctx, terminalID)
			if err != nil {
				return wrapStore("get_payload", err)
			}
			if !ok {
				terminal = types.NewAppPayload(terminalID, types.AppStargateV2BusPassenger, types.PayloadTypeTransfer, types.ProtocolLayerZero, driven.EnvelopeID, driven.EnvelopeID)
			}
			terminal.ApplyInbound(types.PayloadLeg{Counterparty: b.InboundRecipient, Amount: b.InboundAmount})
			terminal.ApplyOutbound(types.PayloadLeg{Counterparty: pre.FromAddress, Amount: pre.OutboundAmount()})
			if err := e.store.SetPayload(ctx, terminal); err != nil {
				return wrapStore("set_payload", err)
			}

			// Retag the consumed buffer so it is never matched again
			// (the buffer's own id is left untouched; its content now
			// lives under terminalID).
			b.App = types.AppStargateV2BusPassenger
			if err := e.store.SetPayload(ctx, b); err != nil {
				return wrapStore("set_payload", err)
			}
			used[b.ID] = true
			break
		}
	}
	return nil
}

// handleOFTReceived is §4.5 step 4. A prior taxi outbound payload wins
// first; failing that, driven staging is walked in ascending ticket-id
// order for a receiver match (the first-hit tie-break of open question
// 1); failing that, an inbound buffer is created to await BusDriven.
func handleOFTReceived(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	guid, err := p.str("guid")
	if err != nil {
		return err
	}
	toAddr, err := p.str("to_address")
	if err != nil {
		return err
	}
	amount, err := p.bigInt("amount_received_ld")
	if err != nil {
		return err
	}
	if identity.IsZeroGUID(guid) {
		return xerrors.State("OFTReceived carries the zero GUID sentinel")
	}

	envelopeID := types.EnvelopeID(types.ProtocolLayerZero, guid)
	to := types.NormalizeAddress(toAddr)

	taxiID := envelopeID + "-taxi"
	if _, ok, err := e.store.GetPayload(ctx, taxiID); err != nil {
		return wrapStore("get_payload", err)
	} else if ok {
		leg := types.PayloadLeg{Counterparty: to, Amount: amount}
		_, err := e.upsertPayloadInbound(ctx, taxiID, types.AppStargateV2Taxi, types.PayloadTypeTransfer, types.ProtocolLayerZero, envelopeID, envelopeID, leg)
		return err
	}

	driven, ok, err := e.store.GetBusDriven(ctx, envelopeID)
	if err != nil {
		return wrapStore("get_bus_driven", err)
	}
	if ok {
		for _, key := range driven.PassengerKeys {
			pre, ok, err := e.store.GetBusPreRecord(ctx, key)
			if err != nil {
				return wrapStore("get_bus_pre_record", err)
			}
			if !ok || !pre.HasPassenger || pre.Passenger.Receiver != to {
				continue
			}

			payloadID := busPassengerID(key)
			pl, ok, err := e.store.GetPayload(ctx, payloadID)
			if err != nil {
				return wrapStore("get_payload", err)
			}
			if !ok {
				pl = types.NewAppPayload(payloadID, types.AppStargateV2BusPassenger, types.PayloadTypeTransfer, types.ProtocolLayerZero, envelopeID, envelopeID)
			}
			pl.ApplyOutbound(types.PayloadLeg{Counterparty: pre.FromAddress, Amount: pre.OutboundAmount()})
			pl.ApplyInbound(types.PayloadLeg{Counterparty: to, Amount: amount})
			if err := e.store.SetPayload(ctx, pl); err != nil {
				return wrapStore("set_payload", err)
			}
			return nil
		}
		return xerrors.State("OFTReceived matched no staged bus passenger")
	}

	buf := types.NewAppPayload(envelopeID, types.AppStargateV2InboundBuffer, types.PayloadTypeTransfer, types.ProtocolLayerZero, envelopeID, envelopeID)
	buf.ApplyInbound(types.PayloadLeg{Counterparty: to, Amount: amount})
	if err := e.store.SetPayload(ctx, buf); err != nil {
		return wrapStore("set_payload", err)
	}
	return nil
}
