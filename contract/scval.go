package contract

import (
	"fmt"
	"math"

	"github.com/stellar/go/xdr"
)

// Soroban values cross the boundary as ScVal. The contract surface here
// only needs addresses, u32 durations, and i128 amounts.

func addressVal(address string) (xdr.ScVal, error) {
	accountID, err := xdr.AddressToAccountId(address)
	if err != nil {
		return xdr.ScVal{}, fmt.Errorf("contract: bad address %q: %w", address, err)
	}
	scAddress := xdr.ScAddress{
		Type:      xdr.ScAddressTypeScAddressTypeAccount,
		AccountId: &accountID,
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &scAddress}, nil
}

func u32Val(v uint32) xdr.ScVal {
	u := xdr.Uint32(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

func i128Val(v int64) xdr.ScVal {
	parts := xdr.Int128Parts{
		Hi: xdr.Int64(v >> 63),
		Lo: xdr.Uint64(v),
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}

// i128ToInt64 narrows a decoded i128 result. The contract's amounts all
// fit in 64 bits; anything wider is a decoding bug worth surfacing.
func i128ToInt64(v xdr.ScVal) (int64, error) {
	if v.Type != xdr.ScValTypeScvI128 || v.I128 == nil {
		return 0, fmt.Errorf("contract: expected i128 result, got %s", v.Type.String())
	}
	parts := v.I128
	switch {
	case parts.Hi == 0 && parts.Lo <= math.MaxInt64:
		return int64(parts.Lo), nil
	case parts.Hi == -1 && parts.Lo > math.MaxInt64:
		return int64(parts.Lo), nil
	default:
		return 0, fmt.Errorf("contract: i128 result out of int64 range")
	}
}
