package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// On-chain fixed-point scales. Interest rates and indices arrive ray-scaled
// (10^27); token amounts are scaled by the asset's own decimal precision,
// most commonly wad (10^18).
const (
	RayDecimals = 27
	WadDecimals = 18
)

var (
	Ray = new(big.Int).Exp(big.NewInt(10), big.NewInt(RayDecimals), nil)
	Wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(WadDecimals), nil)
)

// FromRay converts a ray-scaled integer into a dimensionless decimal.
func FromRay(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -RayDecimals)
}

// RayToPercent converts a ray-scaled annualized rate into percentage points,
// e.g. 0.031 ray-scaled becomes 3.1.
func RayToPercent(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -(RayDecimals - 2))
}

// ToUnits converts a raw token amount into whole-token units using the
// asset's decimal precision.
func ToUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// BigIntZero returns a fresh zero so callers never share a mutable value.
func BigIntZero() *big.Int {
	return new(big.Int)
}

// BigIntOrZero defends entity fields that may have round-tripped through the
// host store as nil.
func BigIntOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
