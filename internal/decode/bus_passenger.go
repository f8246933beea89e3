package decode

import (
	"fmt"
	"strings"

	"github.com/chainrelay/correlator/internal/xerrors"
)

const (
	busPassengerMinHexChars = 44
	busPassengerLen         = 2 + 32 + 8 + 1 // 43
)

// BusPassengerRecord is the decoded Stargate bus passenger tuple:
// 2 (assetId) ‖ 32 (receiver) ‖ 8 (amountSD) ‖ 1 (nativeDrop).
type BusPassengerRecord struct {
	AssetID    uint16
	Receiver   string // bytes32 hex
	AmountSD   uint64
	NativeDrop bool
}

// DecodeBusPassenger parses a 43-byte Stargate bus passenger record.
func DecodeBusPassenger(raw string) (*BusPassengerRecord, error) {
	h := strings.TrimPrefix(raw, "0x")
	if len(h) < busPassengerMinHexChars {
		return nil, xerrors.Decode("bus_passenger", fmt.Errorf("record too short: %d hex chars", len(h)))
	}
	b, err := rawBytes("bus_passenger", raw)
	if err != nil {
		return nil, err
	}
	if err := requireLen("bus_passenger", b, busPassengerLen); err != nil {
		return nil, err
	}
	return &BusPassengerRecord{
		AssetID:    uint16(beUint32(b[0:2])),
		Receiver:   toHex32(b[2:34]),
		AmountSD:   beUint64(b[34:42]),
		NativeDrop: b[42] != 0,
	}, nil
}
