package decode

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDecodeAssetTuple(t *testing.T) {
	origin := common.HexToAddress("0x" + strings.Repeat("11", 20))
	local := common.HexToAddress("0x" + strings.Repeat("22", 20))
	recipient := common.HexToAddress("0x" + strings.Repeat("33", 20))
	amount := big.NewInt(1000)
	extra := []byte{0xca, 0xfe}

	packed, err := assetTupleArgs.Pack(origin, local, recipient, amount, extra)
	if err != nil {
		t.Fatalf("failed to pack fixture: %v", err)
	}

	tup, err := DecodeAssetTuple("0x" + hex.EncodeToString(packed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tup.OriginToken != origin {
		t.Errorf("originToken: got %s, want %s", tup.OriginToken, origin)
	}
	if tup.LocalToken != local {
		t.Errorf("localToken: got %s, want %s", tup.LocalToken, local)
	}
	if tup.Recipient != recipient {
		t.Errorf("recipient: got %s, want %s", tup.Recipient, recipient)
	}
	if tup.Amount.Cmp(amount) != 0 {
		t.Errorf("amount: got %s, want %s", tup.Amount, amount)
	}
	if string(tup.ExtraData) != string(extra) {
		t.Errorf("extraData: got %x, want %x", tup.ExtraData, extra)
	}
}

func TestDecodeAssetTupleInvalidHex(t *testing.T) {
	if _, err := DecodeAssetTuple("0xzz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}
