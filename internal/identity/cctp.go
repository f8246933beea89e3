package identity

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// CCTPv1Key is the (sourceDomain, nonce) composite, present directly on
// both the DepositForBurn and MessageReceived events.
func CCTPv1Key(sourceDomain uint32, nonce uint64) string {
	return fmt.Sprintf("%d-%d", sourceDomain, nonce)
}

// CCTPv2Body is the normalized message-body tuple both the burn and the
// receive legs extract independently and must hash identically.
type CCTPv2Body struct {
	SourceDomain      uint32
	DestinationDomain uint32
	BurnToken         string // 20-byte address hex
	MintRecipient     string // bytes32 hex
	Amount            *big.Int
	MessageSender     string // bytes32 hex
	MaxFee            *big.Int
	HookData          []byte
}

// CCTPv2Key computes the deterministic 256-bit nonce both legs
// independently derive from the normalized body tuple, using a keccak
// call kept separate from go-ethereum's crypto package so the
// derivation reads as a plain structural hash rather than an Ethereum
// signature primitive.
func CCTPv2Key(body CCTPv2Body) (string, error) {
	burnToken, err := pad32Hex(body.BurnToken)
	if err != nil {
		return "", fmt.Errorf("burn token: %w", err)
	}
	mintRecipient, err := pad32Hex(body.MintRecipient)
	if err != nil {
		return "", fmt.Errorf("mint recipient: %w", err)
	}
	messageSender, err := pad32Hex(body.MessageSender)
	if err != nil {
		return "", fmt.Errorf("message sender: %w", err)
	}

	h := sha3.NewLegacyKeccak256()

	var domains [8]byte
	binary.BigEndian.PutUint32(domains[0:4], body.SourceDomain)
	binary.BigEndian.PutUint32(domains[4:8], body.DestinationDomain)
	h.Write(domains[:])

	h.Write(burnToken)
	h.Write(mintRecipient)
	h.Write(leftPad32(body.Amount))
	h.Write(messageSender)
	h.Write(leftPad32(body.MaxFee))

	var hookLen [8]byte
	binary.BigEndian.PutUint64(hookLen[:], uint64(len(body.HookData)))
	h.Write(hookLen[:])
	h.Write(body.HookData)

	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}

func pad32Hex(raw string) ([]byte, error) {
	h := strings.TrimPrefix(raw, "0x")
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, err
	}
	if len(b) >= 32 {
		return b[len(b)-32:], nil
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded, nil
}

func leftPad32(v *big.Int) []byte {
	if v == nil {
		v = big.NewInt(0)
	}
	b := v.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}
