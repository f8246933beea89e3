package identity

import (
	"math/big"
	"strings"
	"testing"
)

func TestCCTPv1Key(t *testing.T) {
	if got := CCTPv1Key(3, 42); got != "3-42" {
		t.Errorf("got %s, want 3-42", got)
	}
}

func sampleCCTPv2Body() CCTPv2Body {
	return CCTPv2Body{
		SourceDomain:      0,
		DestinationDomain: 3,
		BurnToken:         "0x" + strings.Repeat("aa", 20),
		MintRecipient:     "0x" + strings.Repeat("0", 63) + "1",
		Amount:            big.NewInt(1_000_000),
		MessageSender:     "0x" + strings.Repeat("0", 63) + "2",
		MaxFee:            big.NewInt(100),
		HookData:          []byte{0xde, 0xad},
	}
}

func TestCCTPv2KeyDeterministicBothLegs(t *testing.T) {
	body := sampleCCTPv2Body()

	burnLegKey, err := CCTPv2Key(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	receiveLegKey, err := CCTPv2Key(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if burnLegKey != receiveLegKey {
		t.Errorf("both legs must derive the same key: %s != %s", burnLegKey, receiveLegKey)
	}
	if len(burnLegKey) != 66 {
		t.Errorf("key length: got %d, want 66", len(burnLegKey))
	}
}

func TestCCTPv2KeyVariesByAmount(t *testing.T) {
	a := sampleCCTPv2Body()
	b := sampleCCTPv2Body()
	b.Amount = big.NewInt(2_000_000)

	ka, err := CCTPv2Key(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kb, err := CCTPv2Key(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ka == kb {
		t.Error("expected distinct keys for distinct amounts")
	}
}

func TestCCTPv2KeyInvalidAddress(t *testing.T) {
	body := sampleCCTPv2Body()
	body.BurnToken = "not-hex"
	if _, err := CCTPv2Key(body); err == nil {
		t.Fatal("expected error for invalid burn token hex")
	}
}
