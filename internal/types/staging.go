package types

import (
	"fmt"
	"math/big"
	"time"
)

// BusPassenger is the decoded per-passenger tuple carried by a Stargate
// BusRode event (§4.5.1).
type BusPassenger struct {
	AssetID    uint16
	Receiver   Address
	AmountSD   uint64
	NativeDrop bool
}

// BusRodeOftSentLfg is the per-passenger pre-record staging entity
// (§3). It is keyed first by source tx hash and re-keyed to
// "srcEid:dstEid:ticketId" once both its passenger side (BusRode) and
// its token side (OFTSent) have landed; the tx-hash entry is left in
// place. It is internal to bus coalescing and never surfaced as a
// terminal AppPayload.
type BusRodeOftSentLfg struct {
	Key string // tx hash, or "srcEid:dstEid:ticketId" once re-keyed

	HasPassenger bool
	Passenger    BusPassenger

	HasTokenData  bool
	FromAddress   Address
	AmountSentLD  *big.Int
	Fare          *big.Int

	SrcEid    uint32
	DstEid    uint32
	TicketID  uint64

	UpdatedAt time.Time
}

// OutboundAmount resolves open question 3: amountSentLD takes priority
// over fare when both are present.
func (r *BusRodeOftSentLfg) OutboundAmount() *big.Int {
	if r.AmountSentLD != nil {
		return r.AmountSentLD
	}
	return r.Fare
}

// StableKey is the "srcEid:dstEid:ticketId" key a pre-record is
// re-keyed to once its passenger and token sides are both present.
func StableKey(srcEid, dstEid uint32, ticketID uint64) string {
	return fmt.Sprintf("%d:%d:%d", srcEid, dstEid, ticketID)
}

// BusDrivenOftReceivedLfg is the per-envelope staging entity recording
// the range of passenger ids a BusDriven event transports, used to
// resolve inbound OFTReceived receptions that carry no passenger-level
// identifier (§4.5.4).
type BusDrivenOftReceivedLfg struct {
	EnvelopeID    string
	SrcEid        uint32
	DstEid        uint32
	PassengerKeys []string // StableKey(srcEid, dstEid, ticketID) for each passenger id in range

	UpdatedAt time.Time
}
