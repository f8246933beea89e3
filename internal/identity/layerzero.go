// Package identity implements the per-protocol canonical messageKey
// derivation of spec §4.2, plus the static chain-id↔EID↔slug mapping
// the engine consults when a raw event supplies one identifier but the
// key requires the other.
package identity

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroGUID is the all-zero LayerZero GUID sentinel. It marks the
// batched (Stargate bus) mode on the individual OFTSent event and must
// never be treated as a valid envelope key (spec §4.2, I7).
var ZeroGUID = "0x" + strings.Repeat("0", 64)

// LayerZeroGUID computes keccak256(nonce ‖ srcEid ‖ sender ‖ dstEid ‖
// receiver) with packed encoding widths uint64, uint32, bytes32,
// uint32, bytes32. senderBytes32/receiverBytes32 are left-padded
// bytes32 hex strings (as produced by the packet header decoders).
func LayerZeroGUID(nonce uint64, srcEid uint32, senderBytes32 string, dstEid uint32, receiverBytes32 string) (string, error) {
	sender, err := decodeBytes32(senderBytes32)
	if err != nil {
		return "", err
	}
	receiver, err := decodeBytes32(receiverBytes32)
	if err != nil {
		return "", err
	}

	buf := make([]byte, 0, 8+4+32+4+32)
	var nonceB [8]byte
	binary.BigEndian.PutUint64(nonceB[:], nonce)
	buf = append(buf, nonceB[:]...)

	var srcEidB [4]byte
	binary.BigEndian.PutUint32(srcEidB[:], srcEid)
	buf = append(buf, srcEidB[:]...)

	buf = append(buf, sender...)

	var dstEidB [4]byte
	binary.BigEndian.PutUint32(dstEidB[:], dstEid)
	buf = append(buf, dstEidB[:]...)

	buf = append(buf, receiver...)

	hash := crypto.Keccak256(buf)
	return "0x" + hex.EncodeToString(hash), nil
}

// IsZeroGUID reports whether a GUID is the all-zero sentinel.
func IsZeroGUID(guid string) bool {
	h := strings.TrimPrefix(strings.ToLower(guid), "0x")
	for _, c := range h {
		if c != '0' {
			return false
		}
	}
	return len(h) > 0
}

func decodeBytes32(raw string) ([]byte, error) {
	h := strings.TrimPrefix(raw, "0x")
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, err
	}
	if len(b) < 32 {
		padded := make([]byte, 32)
		copy(padded[32-len(b):], b)
		return padded, nil
	}
	return b[len(b)-32:], nil
}
