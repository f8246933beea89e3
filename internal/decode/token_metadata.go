package decode

import (
	"fmt"
	"math/big"

	"github.com/chainrelay/correlator/internal/xerrors"
)

const (
	tokenMetadataHeadLen = 32 * 3
	maxDecimals          = 77
	maxStringLen         = 256
)

// TokenMetadata is the decoded (name, symbol, decimals) head-of-three-
// slots ABI layout: name offset, symbol offset, decimals.
type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// DecodeTokenMetadata parses the token metadata ABI layout. A decimals
// failure fails the whole decode; a name/symbol sub-failure falls back
// to "Unknown"/"UNK" rather than failing.
func DecodeTokenMetadata(raw string) (*TokenMetadata, error) {
	b, err := rawBytes("token_metadata", raw)
	if err != nil {
		return nil, err
	}
	if err := requireLen("token_metadata", b, tokenMetadataHeadLen); err != nil {
		return nil, err
	}

	nameOffset := bigFromBytes(b[0:32])
	symbolOffset := bigFromBytes(b[32:64])
	decimalsBig := bigFromBytes(b[64:96])

	if decimalsBig.Cmp(big.NewInt(maxDecimals)) > 0 {
		return nil, xerrors.Decode("token_metadata", fmt.Errorf("decimals %s exceeds max %d", decimalsBig, maxDecimals))
	}

	name, err := decodeOffsetString(b, nameOffset)
	if err != nil {
		name = "Unknown"
	}
	symbol, err := decodeOffsetString(b, symbolOffset)
	if err != nil {
		symbol = "UNK"
	}

	return &TokenMetadata{
		Name:     name,
		Symbol:   symbol,
		Decimals: uint8(decimalsBig.Uint64()),
	}, nil
}

// decodeOffsetString reads a (length, bytes) pair at the given byte
// offset into b, validating length and printability.
func decodeOffsetString(b []byte, offset *big.Int) (string, error) {
	if !offset.IsUint64() {
		return "", fmt.Errorf("offset out of range")
	}
	off := offset.Uint64()
	if off+32 > uint64(len(b)) {
		return "", fmt.Errorf("offset out of bounds")
	}
	length := bigFromBytes(b[off : off+32])
	if !length.IsUint64() {
		return "", fmt.Errorf("length out of range")
	}
	l := length.Uint64()
	if l > maxStringLen {
		return "", fmt.Errorf("string exceeds max length %d", maxStringLen)
	}
	start := off + 32
	if start+l > uint64(len(b)) {
		return "", fmt.Errorf("string data out of bounds")
	}
	data := b[start : start+l]
	for i, c := range data {
		if c == 0 {
			data = data[:i]
			break
		}
		if c < 0x20 || c > 0x7e {
			return "", fmt.Errorf("non-printable byte in string")
		}
	}
	return string(data), nil
}
