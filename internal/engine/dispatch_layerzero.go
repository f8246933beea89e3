package engine

import (
	"context"
	"fmt"

	"github.com/chainrelay/correlator/internal/decode"
	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/types"
	"github.com/chainrelay/correlator/internal/xerrors"
)

func registerLayerZeroHandlers(register func(types.Protocol, types.EventKind, handlerFunc)) {
	register(types.ProtocolLayerZero, types.EventPacketSent, handlePacketSent)
	register(types.ProtocolLayerZero, types.EventPacketDelivered, handlePacketDelivered)
}

// handlePacketSent implements §4.6's "PacketSent → decode header →
// upsert_outbound_envelope(layerzero, guid, …)".
func handlePacketSent(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)

	header, err := decodeLZHeader(p)
	if err != nil {
		return err
	}

	guid := p.strOr("guid", "")
	if guid == "" {
		g, err := identity.LayerZeroGUID(header.Nonce, header.SrcEid, header.SenderBytes32, header.DstEid, header.ReceiverBytes32)
		if err != nil {
			return xerrors.Decode("layerzero_guid", err)
		}
		guid = g
	}
	if identity.IsZeroGUID(guid) {
		return xerrors.State("PacketSent carries the zero GUID sentinel")
	}

	from := types.NormalizeAddress(header.SenderBytes32)
	route := types.RouteInfo{SrcEid: header.SrcEid, DstEid: header.DstEid}
	if slug, err := e.chains.SlugForChainID(ev.ChainID); err == nil {
		route.SrcSlug = slug
	}
	if dstChainID, err := e.chains.ChainIDForEid(header.DstEid); err == nil {
		if slug, err := e.chains.SlugForChainID(dstChainID); err == nil {
			route.DstSlug = slug
		}
	}

	meta := types.LegMeta{Block: ev.Block, Timestamp: ev.Timestamp, TxHash: ev.TxHash, ChainID: ev.ChainID}
	if _, err := e.upsertOutboundEnvelope(ctx, types.ProtocolLayerZero, guid, meta, from, route); err != nil {
		return err
	}

	payloadID := fmt.Sprintf("%s:%s-0", types.ProtocolLayerZero, guid)
	leg := types.PayloadLeg{
		Counterparty:  from,
		TargetAddress: types.NormalizeAddress(header.ReceiverBytes32),
		Raw:           header.InnerPayload,
	}
	_, err = e.upsertPayloadOutbound(ctx, payloadID, types.AppLayerZero, types.PayloadTypeMessage, types.ProtocolLayerZero, types.EnvelopeID(types.ProtocolLayerZero, guid), types.EnvelopeID(types.ProtocolLayerZero, guid), leg)
	return err
}

// handlePacketDelivered implements §4.6's "PacketDelivered → recompute
// guid → upsert_inbound_envelope(layerzero, guid, …)". The GUID is
// always recomputed here: the destination leg carries only the origin
// fields plus the local EID, looked up from the inbound chain id.
func handlePacketDelivered(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)

	originSrcEid, err := p.uint32("origin_src_eid")
	if err != nil {
		return err
	}
	originSender, err := p.str("origin_sender")
	if err != nil {
		return err
	}
	originNonce, err := p.uint64("origin_nonce")
	if err != nil {
		return err
	}
	receiver, err := p.str("receiver")
	if err != nil {
		return err
	}

	localEid, err := e.chains.EidForChainID(ev.ChainID)
	if err != nil {
		return err
	}

	guid, err := identity.LayerZeroGUID(originNonce, originSrcEid, originSender, localEid, receiver)
	if err != nil {
		return xerrors.Decode("layerzero_guid", err)
	}
	if identity.IsZeroGUID(guid) {
		return xerrors.State("PacketDelivered recomputed the zero GUID sentinel")
	}

	to := types.NormalizeAddress(receiver)
	route := types.RouteInfo{SrcEid: originSrcEid, DstEid: localEid}
	if originChainID, err := e.chains.ChainIDForEid(originSrcEid); err == nil {
		if slug, err := e.chains.SlugForChainID(originChainID); err == nil {
			route.SrcSlug = slug
		}
	}
	if slug, err := e.chains.SlugForChainID(ev.ChainID); err == nil {
		route.DstSlug = slug
	}

	meta := types.LegMeta{Block: ev.Block, Timestamp: ev.Timestamp, TxHash: ev.TxHash, ChainID: ev.ChainID}
	if _, err := e.upsertInboundEnvelope(ctx, types.ProtocolLayerZero, guid, meta, to, route); err != nil {
		return err
	}

	payloadID := fmt.Sprintf("%s:%s-0", types.ProtocolLayerZero, guid)
	leg := types.PayloadLeg{
		Counterparty: to,
		Raw:          p.strOr("payload", ""),
	}
	_, err = e.upsertPayloadInbound(ctx, payloadID, types.AppLayerZero, types.PayloadTypeMessage, types.ProtocolLayerZero, types.EnvelopeID(types.ProtocolLayerZero, guid), types.EnvelopeID(types.ProtocolLayerZero, guid), leg)
	return err
}

// decodeLZHeader picks the header decoder by the event's "path" param
// (default v2), matching §4.1's three packet-header variants.
func decodeLZHeader(p params) (*decode.PacketHeaderV2, error) {
	raw, err := p.str("header")
	if err != nil {
		return nil, err
	}
	switch p.strOr("path", "v2") {
	case "v1-ultralight":
		h, err := decode.DecodePacketHeaderV1UltraLight(raw)
		if err != nil {
			return nil, err
		}
		return &decode.PacketHeaderV2{
			Nonce:           h.Nonce,
			SrcEid:          uint32(h.SrcChainID),
			SenderBytes32:   h.Sender,
			DstEid:          uint32(h.DstChainID),
			ReceiverBytes32: h.DstAddress,
			InnerPayload:    h.InnerPayload,
		}, nil
	case "v1-uln301":
		return decode.DecodePacketHeaderV1Uln301(raw)
	default:
		return decode.DecodePacketHeaderV2(raw)
	}
}
