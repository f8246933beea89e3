package decode

import (
	"fmt"
	"strings"
	"testing"
)

func buildV2Header(nonce uint64, srcEid uint32, sender string, dstEid uint32, receiver string, inner string) string {
	return fmt.Sprintf("0x01%016x%08x%s%08x%s%s", nonce, srcEid, sender, dstEid, receiver, inner)
}

func TestDecodePacketHeaderV2(t *testing.T) {
	sender := strings.Repeat("0", 63) + "1"
	receiver := strings.Repeat("0", 63) + "2"
	raw := buildV2Header(42, 30101, sender, 30184, receiver, "cafe")

	h, err := DecodePacketHeaderV2(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Nonce != 42 {
		t.Errorf("nonce: got %d, want 42", h.Nonce)
	}
	if h.SrcEid != 30101 {
		t.Errorf("srcEid: got %d, want 30101", h.SrcEid)
	}
	if h.DstEid != 30184 {
		t.Errorf("dstEid: got %d, want 30184", h.DstEid)
	}
	if h.SenderBytes32 != "0x"+sender {
		t.Errorf("sender: got %s, want 0x%s", h.SenderBytes32, sender)
	}
	if h.ReceiverBytes32 != "0x"+receiver {
		t.Errorf("receiver: got %s, want 0x%s", h.ReceiverBytes32, receiver)
	}
	if h.InnerPayload != "0xcafe" {
		t.Errorf("inner payload: got %s, want 0xcafe", h.InnerPayload)
	}
}

func TestDecodePacketHeaderV2TooShort(t *testing.T) {
	if _, err := DecodePacketHeaderV2("0x0102"); err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestDecodePacketHeaderV1UltraLight(t *testing.T) {
	sender := strings.Repeat("0", 39) + "1"
	dst := strings.Repeat("0", 39) + "2"
	raw := fmt.Sprintf("0x%016x%04x%s%04x%s%s", uint64(7), uint16(101), sender, uint16(184), dst, "beef")

	h, err := DecodePacketHeaderV1UltraLight(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Nonce != 7 {
		t.Errorf("nonce: got %d, want 7", h.Nonce)
	}
	if h.SrcChainID != 101 {
		t.Errorf("srcChainId: got %d, want 101", h.SrcChainID)
	}
	if h.DstChainID != 184 {
		t.Errorf("dstChainId: got %d, want 184", h.DstChainID)
	}
	if h.InnerPayload != "0xbeef" {
		t.Errorf("inner payload: got %s, want 0xbeef", h.InnerPayload)
	}
}

func TestDecodePacketHeaderV1Uln301MatchesV2Shape(t *testing.T) {
	sender := strings.Repeat("0", 63) + "1"
	receiver := strings.Repeat("0", 63) + "2"
	raw := buildV2Header(5, 1, sender, 2, receiver, "")

	h, err := DecodePacketHeaderV1Uln301(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Nonce != 5 {
		t.Errorf("nonce: got %d, want 5", h.Nonce)
	}
}
