package decode

import "math/big"

// GlobalIndex is the decoded Agglayer globalIndex bitfield: low 32 bits
// localRootIndex, next 32 bits rollupIndex, next 1 bit mainnetFlag;
// higher bits are ignored.
type GlobalIndex struct {
	LocalRootIndex uint32
	RollupIndex    uint32
	MainnetFlag    bool
}

var (
	mask32 = new(big.Int).SetUint64(0xFFFFFFFF)
)

// DecodeGlobalIndex parses the 256-bit globalIndex bitfield.
func DecodeGlobalIndex(raw string) (*GlobalIndex, error) {
	b, err := rawBytes("global_index", raw)
	if err != nil {
		return nil, err
	}
	value := bigFromBytes(b)

	localRootIndex := new(big.Int).And(value, mask32)
	rollup := new(big.Int).Rsh(value, 32)
	rollupIndex := new(big.Int).And(rollup, mask32)
	mainnetBit := new(big.Int).Rsh(value, 64)
	mainnetFlag := new(big.Int).And(mainnetBit, big.NewInt(1)).Cmp(big.NewInt(0)) != 0

	return &GlobalIndex{
		LocalRootIndex: uint32(localRootIndex.Uint64()),
		RollupIndex:    uint32(rollupIndex.Uint64()),
		MainnetFlag:    mainnetFlag,
	}, nil
}
