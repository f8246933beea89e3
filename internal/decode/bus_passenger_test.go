package decode

import (
	"fmt"
	"strings"
	"testing"
)

func TestDecodeBusPassenger(t *testing.T) {
	receiver := strings.Repeat("0", 63) + "1"
	raw := fmt.Sprintf("0x%04x%s%016x%02x", uint16(5), receiver, uint64(100), 1)

	p, err := DecodeBusPassenger(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.AssetID != 5 {
		t.Errorf("assetId: got %d, want 5", p.AssetID)
	}
	if p.Receiver != "0x"+receiver {
		t.Errorf("receiver: got %s, want 0x%s", p.Receiver, receiver)
	}
	if p.AmountSD != 100 {
		t.Errorf("amountSD: got %d, want 100", p.AmountSD)
	}
	if !p.NativeDrop {
		t.Error("nativeDrop: got false, want true")
	}
}

func TestDecodeBusPassengerTooShort(t *testing.T) {
	if _, err := DecodeBusPassenger("0x0102"); err == nil {
		t.Fatal("expected error for undersized record")
	}
}
