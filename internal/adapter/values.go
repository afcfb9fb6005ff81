package adapter

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case big.Int:
		return &v, nil
	case uint8:
		return big.NewInt(int64(v)), nil
	case uint16:
		return big.NewInt(int64(v)), nil
	case uint32:
		return big.NewInt(int64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported integer type %T", value)
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBool(value interface{}) (bool, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return false, fmt.Errorf("unsupported bool type %T", value)
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 255 {
			return 0, fmt.Errorf("value out of uint8 range: %s", v)
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	if value == nil {
		return 0, fmt.Errorf("nil int24 value")
	}
	if !value.IsInt64() {
		return 0, fmt.Errorf("int24 out of range: %s", value)
	}
	raw := value.Int64()
	if raw < -8388608 || raw > 8388607 {
		return 0, fmt.Errorf("int24 out of range: %d", raw)
	}
	return int32(raw), nil
}
