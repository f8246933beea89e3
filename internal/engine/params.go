package engine

import (
	"fmt"
	"math/big"

	"github.com/chainrelay/correlator/internal/xerrors"
)

// params wraps a RawEvent's protocol-specific field map with typed,
// total accessors. The required accessors (str, uint64, uint32, bigInt)
// return a DecodeError on a missing key or a type mismatch — a
// malformed params map is treated exactly like a malformed raw byte
// string (spec §4.1/§7): the event is skipped, nothing is partially
// written. The optional accessors (strOr, bigIntOpt, bool) return a
// fallback value instead of an error.
type params map[string]any

func (p params) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", xerrors.Decode("params", fmt.Errorf("missing field %q", key))
	}
	s, ok := v.(string)
	if !ok {
		return "", xerrors.Decode("params", fmt.Errorf("field %q is not a string", key))
	}
	return s, nil
}

func (p params) strOr(key, fallback string) string {
	s, err := p.str(key)
	if err != nil {
		return fallback
	}
	return s
}

func (p params) uint64(key string) (uint64, error) {
	v, ok := p[key]
	if !ok {
		return 0, xerrors.Decode("params", fmt.Errorf("missing field %q", key))
	}
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int64:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	case float64:
		return uint64(n), nil
	default:
		return 0, xerrors.Decode("params", fmt.Errorf("field %q is not a number", key))
	}
}

func (p params) uint32(key string) (uint32, error) {
	v, err := p.uint64(key)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (p params) bigInt(key string) (*big.Int, error) {
	v, ok := p[key]
	if !ok {
		return nil, xerrors.Decode("params", fmt.Errorf("missing field %q", key))
	}
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case string:
		b, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, xerrors.Decode("params", fmt.Errorf("field %q is not a base-10 integer", key))
		}
		return b, nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int64:
		return big.NewInt(n), nil
	default:
		return nil, xerrors.Decode("params", fmt.Errorf("field %q is not an integer", key))
	}
}

func (p params) bigIntOpt(key string) *big.Int {
	b, err := p.bigInt(key)
	if err != nil {
		return nil
	}
	return b
}

func (p params) bool(key string) bool {
	v, ok := p[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
