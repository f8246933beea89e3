// Package decode implements the protocol-specific byte decoders of
// spec §4.1. Every decoder is total: on any length shortfall, malformed
// prefix, or out-of-range header tag it returns a DecodeError and
// populates nothing.
package decode

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/chainrelay/correlator/internal/xerrors"
)

// rawBytes strips an optional "0x" prefix and decodes the remaining
// hex digits, failing with a DecodeError tagged by decoder.
func rawBytes(decoder, raw string) ([]byte, error) {
	h := strings.TrimPrefix(raw, "0x")
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, xerrors.Decode(decoder, fmt.Errorf("invalid hex: %w", err))
	}
	return b, nil
}

func requireLen(decoder string, b []byte, min int) error {
	if len(b) < min {
		return xerrors.Decode(decoder, fmt.Errorf("expected at least %d bytes, got %d", min, len(b)))
	}
	return nil
}

func beUint32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func toHex32(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func bigFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
