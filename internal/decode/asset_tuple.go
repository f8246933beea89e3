package decode

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/chainrelay/correlator/internal/xerrors"
)

// AssetTuple is the decoded (address, address, address, uint256,
// bytes) ABI tuple used by bridge-mint data.
type AssetTuple struct {
	OriginToken  common.Address
	LocalToken   common.Address
	Recipient    common.Address
	Amount       *big.Int
	ExtraData    []byte
}

var assetTupleArgs = mustArguments(
	abi.Argument{Type: mustType("address")},
	abi.Argument{Type: mustType("address")},
	abi.Argument{Type: mustType("address")},
	abi.Argument{Type: mustType("uint256")},
	abi.Argument{Type: mustType("bytes")},
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err) // fixed literal types, cannot fail
	}
	return typ
}

func mustArguments(args ...abi.Argument) abi.Arguments {
	return abi.Arguments(args)
}

// DecodeAssetTuple head/tail ABI-decodes the asset tuple.
func DecodeAssetTuple(raw string) (*AssetTuple, error) {
	b, err := rawBytes("asset_tuple", raw)
	if err != nil {
		return nil, err
	}
	values, err := assetTupleArgs.Unpack(b)
	if err != nil {
		return nil, xerrors.Decode("asset_tuple", fmt.Errorf("abi unpack: %w", err))
	}
	if len(values) != 5 {
		return nil, xerrors.Decode("asset_tuple", fmt.Errorf("expected 5 fields, got %d", len(values)))
	}
	originToken, ok := values[0].(common.Address)
	if !ok {
		return nil, xerrors.Decode("asset_tuple", fmt.Errorf("field 0 not address"))
	}
	localToken, ok := values[1].(common.Address)
	if !ok {
		return nil, xerrors.Decode("asset_tuple", fmt.Errorf("field 1 not address"))
	}
	recipient, ok := values[2].(common.Address)
	if !ok {
		return nil, xerrors.Decode("asset_tuple", fmt.Errorf("field 2 not address"))
	}
	amount, ok := values[3].(*big.Int)
	if !ok {
		return nil, xerrors.Decode("asset_tuple", fmt.Errorf("field 3 not uint256"))
	}
	extra, ok := values[4].([]byte)
	if !ok {
		return nil, xerrors.Decode("asset_tuple", fmt.Errorf("field 4 not bytes"))
	}
	return &AssetTuple{
		OriginToken: originToken,
		LocalToken:  localToken,
		Recipient:   recipient,
		Amount:      amount,
		ExtraData:   extra,
	}, nil
}
