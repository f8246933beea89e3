package decode

import (
	"encoding/hex"
	"fmt"
	"testing"
)

// buildTokenMetadata assembles the head-of-three-slots layout plus the
// (length, bytes) tail pairs for name and symbol, each padded to a
// 32-byte boundary as ABI dynamic strings are.
func buildTokenMetadata(name, symbol string, decimals uint64) string {
	nameOffset := 96
	symbolOffset := nameOffset + 32 + pad32(len(name))
	head := fmt.Sprintf("%064x%064x%064x", nameOffset, symbolOffset, decimals)
	nameSlot := fmt.Sprintf("%064x%s%s", len(name), hex.EncodeToString([]byte(name)), zeroPad(len(name)))
	symbolSlot := fmt.Sprintf("%064x%s%s", len(symbol), hex.EncodeToString([]byte(symbol)), zeroPad(len(symbol)))
	return "0x" + head + nameSlot + symbolSlot
}

func pad32(n int) int {
	rem := n % 32
	if rem == 0 {
		return n
	}
	return n + (32 - rem)
}

func zeroPad(n int) string {
	padLen := pad32(n) - n
	out := make([]byte, padLen*2)
	for i := range out {
		out[i] = '0'
	}
	return string(out)
}

func TestDecodeTokenMetadata(t *testing.T) {
	raw := buildTokenMetadata("Wrapped Ether", "WETH", 18)

	m, err := DecodeTokenMetadata(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "Wrapped Ether" {
		t.Errorf("name: got %q, want %q", m.Name, "Wrapped Ether")
	}
	if m.Symbol != "WETH" {
		t.Errorf("symbol: got %q, want %q", m.Symbol, "WETH")
	}
	if m.Decimals != 18 {
		t.Errorf("decimals: got %d, want 18", m.Decimals)
	}
}

func TestDecodeTokenMetadataDecimalsOverflow(t *testing.T) {
	raw := buildTokenMetadata("X", "X", 78)
	if _, err := DecodeTokenMetadata(raw); err == nil {
		t.Fatal("expected error for decimals exceeding max")
	}
}

func TestDecodeTokenMetadataBadOffsetFallsBack(t *testing.T) {
	head := fmt.Sprintf("%064x%064x%064x", 9999, 9999, 6)
	m, err := DecodeTokenMetadata("0x" + head)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "Unknown" {
		t.Errorf("name: got %q, want fallback Unknown", m.Name)
	}
	if m.Symbol != "UNK" {
		t.Errorf("symbol: got %q, want fallback UNK", m.Symbol)
	}
	if m.Decimals != 6 {
		t.Errorf("decimals: got %d, want 6", m.Decimals)
	}
}
