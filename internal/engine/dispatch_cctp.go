package engine

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/types"
	"github.com/chainrelay/correlator/internal/xerrors"
)

func registerCCTPHandlers(register func(types.Protocol, types.EventKind, handlerFunc)) {
	register(types.ProtocolCCTP, types.EventDepositForBurn, handleDepositForBurn)
	register(types.ProtocolCCTP, types.EventMessageReceived, handleMessageReceived)
}

// cctpVersion reads the "version" param, defaulting to v1 — CCTP v1
// carries a domain-space nonce directly on both legs; v2 does not and
// instead derives a deterministic key from the message body (§4.2).
func cctpVersion(p params) string {
	return p.strOr("version", "v1")
}

func cctpv2BodyFromParams(p params) (identity.CCTPv2Body, error) {
	sourceDomain, err := p.uint32("source_domain")
	if err != nil {
		return identity.CCTPv2Body{}, err
	}
	destDomain, err := p.uint32("destination_domain")
	if err != nil {
		return identity.CCTPv2Body{}, err
	}
	burnToken, err := p.str("burn_token")
	if err != nil {
		return identity.CCTPv2Body{}, err
	}
	mintRecipient, err := p.str("mint_recipient")
	if err != nil {
		return identity.CCTPv2Body{}, err
	}
	amount, err := p.bigInt("amount")
	if err != nil {
		return identity.CCTPv2Body{}, err
	}
	messageSender, err := p.str("message_sender")
	if err != nil {
		return identity.CCTPv2Body{}, err
	}
	maxFee := p.bigIntOpt("max_fee")

	var hookData []byte
	if raw := p.strOr("hook_data", ""); raw != "" {
		b, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
		if err != nil {
			return identity.CCTPv2Body{}, xerrors.Decode("cctpv2_hook_data", err)
		}
		hookData = b
	}

	return identity.CCTPv2Body{
		SourceDomain:      sourceDomain,
		DestinationDomain: destDomain,
		BurnToken:         burnToken,
		MintRecipient:     mintRecipient,
		Amount:            amount,
		MessageSender:     messageSender,
		MaxFee:            maxFee,
		HookData:          hookData,
	}, nil
}

func cctpMessageKey(p params) (string, error) {
	if cctpVersion(p) == "v2" {
		body, err := cctpv2BodyFromParams(p)
		if err != nil {
			return "", err
		}
		key, err := identity.CCTPv2Key(body)
		if err != nil {
			return "", xerrors.Decode("cctpv2_key", err)
		}
		return key, nil
	}
	sourceDomain, err := p.uint32("source_domain")
	if err != nil {
		return "", err
	}
	nonce, err := p.uint64("nonce")
	if err != nil {
		return "", err
	}
	return identity.CCTPv1Key(sourceDomain, nonce), nil
}

// handleDepositForBurn is the CCTP outbound leg, covering both v1
// (DepositForBurn) and v2 (DepositForBurnV2).
func handleDepositForBurn(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	messageKey, err := cctpMessageKey(p)
	if err != nil {
		return err
	}
	burnToken, err := p.str("burn_token")
	if err != nil {
		return err
	}
	amount, err := p.bigInt("amount")
	if err != nil {
		return err
	}
	sender, err := p.str("message_sender")
	if err != nil {
		return err
	}
	mintRecipient, err := p.str("mint_recipient")
	if err != nil {
		return err
	}

	envelopeID := types.EnvelopeID(types.ProtocolCCTP, messageKey)
	meta := types.LegMeta{Block: ev.Block, Timestamp: ev.Timestamp, TxHash: ev.TxHash, ChainID: ev.ChainID}
	from := types.NormalizeAddress(sender)

	if _, err := e.upsertOutboundEnvelope(ctx, types.ProtocolCCTP, messageKey, meta, from, types.RouteInfo{}); err != nil {
		return err
	}

	leg := types.PayloadLeg{
		AssetAddress:  types.NormalizeAddress(burnToken),
		Amount:        amount,
		Counterparty:  from,
		TargetAddress: types.NormalizeAddress(mintRecipient),
	}
	_, err = e.upsertPayloadOutbound(ctx, envelopeID+"-0", types.AppCCTP, types.PayloadTypeTransfer, types.ProtocolCCTP, envelopeID, envelopeID, leg)
	return err
}

// handleMessageReceived is the CCTP inbound leg, covering both v1
// (MessageReceived) and v2 (MessageReceivedV2). The v2 body tuple must
// be the normalized form of the same fields the outbound leg hashed,
// or the derived key will not match.
func handleMessageReceived(ctx context.Context, e *Engine, ev subscriber.RawEvent) error {
	p := params(ev.Params)
	messageKey, err := cctpMessageKey(p)
	if err != nil {
		return err
	}
	mintRecipient, err := p.str("mint_recipient")
	if err != nil {
		return err
	}
	amount, err := p.bigInt("amount")
	if err != nil {
		return err
	}
	burnToken := p.strOr("burn_token", "")

	envelopeID := types.EnvelopeID(types.ProtocolCCTP, messageKey)
	meta := types.LegMeta{Block: ev.Block, Timestamp: ev.Timestamp, TxHash: ev.TxHash, ChainID: ev.ChainID}
	to := types.NormalizeAddress(mintRecipient)

	if _, err := e.upsertInboundEnvelope(ctx, types.ProtocolCCTP, messageKey, meta, to, types.RouteInfo{}); err != nil {
		return err
	}

	leg := types.PayloadLeg{
		AssetAddress: types.NormalizeAddress(burnToken),
		Amount:       amount,
		Counterparty: to,
	}
	_, err = e.upsertPayloadInbound(ctx, envelopeID+"-0", types.AppCCTP, types.PayloadTypeTransfer, types.ProtocolCCTP, envelopeID, envelopeID, leg)
	return err
}
