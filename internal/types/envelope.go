package types

import "time"

// LegMeta carries the block-level metadata common to either leg of a
// cross-chain message, as delivered by the subscriber alongside the
// decoded event fields.
type LegMeta struct {
	Block     uint64
	Timestamp uint64
	TxHash    string
	ChainID   uint64
}

// RouteInfo is the endpoint-id/slug pair an envelope's outbound and
// inbound legs agree on. Empty fields are "unset"; §4.3 merges any
// incoming non-empty component into an envelope that is missing it.
type RouteInfo struct {
	SrcEid  uint32
	DstEid  uint32
	SrcSlug string
	DstSlug string
}

func (r RouteInfo) merge(into RouteInfo) RouteInfo {
	if into.SrcEid == 0 {
		into.SrcEid = r.SrcEid
	}
	if into.DstEid == 0 {
		into.DstEid = r.DstEid
	}
	if into.SrcSlug == "" {
		into.SrcSlug = r.SrcSlug
	}
	if into.DstSlug == "" {
		into.DstSlug = r.DstSlug
	}
	return into
}

// CrosschainMessage is the transport-layer envelope: one per
// protocol-level packet, keyed by "protocol:messageKey". Outbound and
// inbound fields are each filled at most once and are thereafter
// immutable (I2).
type CrosschainMessage struct {
	ID         string
	Protocol   Protocol
	MessageKey string

	OutboundBlock     *uint64
	OutboundTimestamp *uint64
	OutboundTxHash    string
	OutboundChainID   *uint64
	OutboundFrom      Address

	InboundBlock     *uint64
	InboundTimestamp *uint64
	InboundTxHash    string
	InboundChainID   *uint64
	InboundTo        Address

	Route RouteInfo

	Matched bool
	Latency *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnvelopeID builds the stable "protocol:messageKey" id. Never shorten
// this to messageKey alone — see spec §9 open question 4.
func EnvelopeID(protocol Protocol, messageKey string) string {
	return string(protocol) + ":" + messageKey
}

// Recompute derives Matched and Latency from the current leg state.
// Called after every outbound/inbound merge; idempotent.
func (m *CrosschainMessage) Recompute() {
	m.Matched = m.OutboundBlock != nil && m.InboundBlock != nil
	if m.Matched && m.OutboundTimestamp != nil && m.InboundTimestamp != nil {
		lat := int64(*m.InboundTimestamp) - int64(*m.OutboundTimestamp)
		m.Latency = &lat
	} else {
		m.Latency = nil
	}
}

// ApplyOutbound fills outbound fields and route, but only where unset,
// and never touches inbound fields. Returns true if the outbound block
// was unset and has now been written (i.e. this is the leg's first
// arrival, not a re-delivery).
func (m *CrosschainMessage) ApplyOutbound(meta LegMeta, from Address, route RouteInfo) bool {
	changed := false
	if m.OutboundBlock == nil {
		b := meta.Block
		m.OutboundBlock = &b
		changed = true
	}
	if m.OutboundTimestamp == nil {
		ts := meta.Timestamp
		m.OutboundTimestamp = &ts
	}
	if m.OutboundTxHash == "" {
		m.OutboundTxHash = meta.TxHash
	}
	if m.OutboundChainID == nil {
		id := meta.ChainID
		m.OutboundChainID = &id
	}
	if m.OutboundFrom == ZeroAddress {
		m.OutboundFrom = from
	}
	m.Route = route.merge(m.Route)
	m.Recompute()
	return changed
}

// ApplyInbound is the symmetric counterpart of ApplyOutbound.
func (m *CrosschainMessage) ApplyInbound(meta LegMeta, to Address, route RouteInfo) bool {
	changed := false
	if m.InboundBlock == nil {
		b := meta.Block
		m.InboundBlock = &b
		changed = true
	}
	if m.InboundTimestamp == nil {
		ts := meta.Timestamp
		m.InboundTimestamp = &ts
	}
	if m.InboundTxHash == "" {
		m.InboundTxHash = meta.TxHash
	}
	if m.InboundChainID == nil {
		id := meta.ChainID
		m.InboundChainID = &id
	}
	if m.InboundTo == ZeroAddress {
		m.InboundTo = to
	}
	m.Route = route.merge(m.Route)
	m.Recompute()
	return changed
}

// NewCrosschainMessage creates an empty envelope shell for the given
// protocol/messageKey, ready for its first ApplyOutbound/ApplyInbound.
func NewCrosschainMessage(protocol Protocol, messageKey string) *CrosschainMessage {
	now := time.Now()
	return &CrosschainMessage{
		ID:         EnvelopeID(protocol, messageKey),
		Protocol:   protocol,
		MessageKey: messageKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
