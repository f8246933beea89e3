package types

import (
	"math/big"
	"time"
)

// PayloadLeg carries the application-layer fields observed on one side
// of a transfer.
type PayloadLeg struct {
	AssetAddress  Address
	Amount        *big.Int
	Counterparty  Address // sender on outbound, recipient on inbound
	TargetAddress Address // outbound-only: the declared destination address
	Raw           string
}

// AppPayload is the application-layer transfer carried inside one
// envelope. Outbound and inbound sides are each filled at most once.
type AppPayload struct {
	ID                     string
	App                    App
	PayloadType            PayloadType
	TransportingProtocol   Protocol
	TransportingMessageID  string
	CrosschainMessageID    string

	OutboundAssetAddress  Address
	OutboundAmount        *big.Int
	OutboundSender        Address
	OutboundTargetAddress Address
	OutboundRaw           string

	InboundAssetAddress Address
	InboundAmount       *big.Int
	InboundRecipient    Address
	InboundRaw          string

	Matched bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recompute derives Matched from the presence of both sides' amounts.
func (p *AppPayload) Recompute() {
	p.Matched = p.OutboundAmount != nil && p.InboundAmount != nil
}

// ApplyOutbound fills outbound fields where unset, preserving any
// existing inbound fields.
func (p *AppPayload) ApplyOutbound(leg PayloadLeg) {
	if p.OutboundAmount == nil {
		if p.OutboundAssetAddress == ZeroAddress {
			p.OutboundAssetAddress = leg.AssetAddress
		}
		p.OutboundAmount = leg.Amount
		if p.OutboundSender == ZeroAddress {
			p.OutboundSender = leg.Counterparty
		}
		if p.OutboundTargetAddress == ZeroAddress {
			p.OutboundTargetAddress = leg.TargetAddress
		}
		if p.OutboundRaw == "" {
			p.OutboundRaw = leg.Raw
		}
	}
	p.Recompute()
}

// ApplyInbound is the symmetric counterpart of ApplyOutbound.
func (p *AppPayload) ApplyInbound(leg PayloadLeg) {
	if p.InboundAmount == nil {
		if p.InboundAssetAddress == ZeroAddress {
			p.InboundAssetAddress = leg.AssetAddress
		}
		p.InboundAmount = leg.Amount
		if p.InboundRecipient == ZeroAddress {
			p.InboundRecipient = leg.Counterparty
		}
		if p.InboundRaw == "" {
			p.InboundRaw = leg.Raw
		}
	}
	p.Recompute()
}

// NewAppPayload creates an empty payload shell linked to an envelope.
func NewAppPayload(id string, app App, payloadType PayloadType, transportingProtocol Protocol, transportingMessageID, envelopeID string) *AppPayload {
	now := time.Now()
	return &AppPayload{
		ID:                    id,
		App:                   app,
		PayloadType:           payloadType,
		TransportingProtocol:  transportingProtocol,
		TransportingMessageID: transportingMessageID,
		CrosschainMessageID:   envelopeID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
