package identity

import (
	"math/big"
	"testing"
)

func TestAgglayerKeyLowercasesAddresses(t *testing.T) {
	k := AgglayerKey(1, "0xABCDEF", "0x123ABC", big.NewInt(500), 9)
	want := "1-0xabcdef-0x123abc-500-9"
	if k != want {
		t.Errorf("got %s, want %s", k, want)
	}
}

func TestAgglayerKeyNilAmount(t *testing.T) {
	k := AgglayerKey(1, "0xa", "0xb", nil, 0)
	want := "1-0xa-0xb-0-0"
	if k != want {
		t.Errorf("got %s, want %s", k, want)
	}
}
