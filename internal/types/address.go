package types

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is the canonical 20-byte, checksum-encoded form of an EVM
// address. It is the only address representation the engine stores or
// compares; the engine's handlers normalize decoded hex strings into it
// with NormalizeAddress before storing.
type Address string

// ZeroAddress is the canonical empty address.
const ZeroAddress Address = ""

// NormalizeAddress converts a hex string into checksum-encoded form.
//
// Accepts either a left-padded bytes32 (the low 20 bytes are taken) or
// an already-20-byte address. Anything else is returned unchanged, per
// §4.1 of the address-normalization decoder.
func NormalizeAddress(raw string) Address {
	h := strings.TrimPrefix(raw, "0x")
	switch len(h) {
	case 64:
		return Address(common.HexToAddress("0x" + h[24:]).Hex())
	case 40:
		return Address(common.HexToAddress("0x" + h).Hex())
	default:
		return Address(raw)
	}
}

// Lower returns the lowercase hex form, used by protocols (Agglayer)
// whose composite keys are defined over lowercased addresses rather
// than checksum case.
func (a Address) Lower() string {
	return strings.ToLower(string(a))
}

func (a Address) String() string {
	return string(a)
}

// Equal compares two addresses case-insensitively; callers should
// still prefer storing/comparing normalized Address values directly.
func (a Address) Equal(b Address) bool {
	return strings.EqualFold(string(a), string(b))
}
