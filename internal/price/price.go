// Package price converts between tick indices, prices, and Q64.96
// square-root prices.
//
// Tick/sqrt-price conversions use float64 exp/ln rather than the
// contract's bit-exact lookup-table method. The results feed off-chain
// comparisons and slippage limits only; the contract remains the source
// of truth, so consistent relative ordering is what matters here, not
// bit-exactness.
package price

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// tickBase is the price ratio between adjacent ticks: price = 1.0001^tick.
const tickBase = 1.0001

// Q96 is the fixed-point scale for sqrt prices, 2^96. Treated as a
// constant; callers must not mutate it.
var Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

var q96Float = new(big.Float).SetInt(Q96)

// TickToPrice returns 1.0001^tick as token1/token0. Tick 0 maps to
// exactly 1 without a transcendental call.
func TickToPrice(tick int32) float64 {
	if tick == 0 {
		return 1
	}
	return math.Exp(float64(tick) * math.Log(tickBase))
}

// TickToSqrtPriceX96 returns floor(sqrt(1.0001^tick) * 2^96). Tick 0
// maps to exactly 2^96.
func TickToSqrtPriceX96(tick int32) *big.Int {
	if tick == 0 {
		return new(big.Int).Set(Q96)
	}
	sqrtPrice := math.Exp(float64(tick) / 2 * math.Log(tickBase))
	scaled := new(big.Float).Mul(big.NewFloat(sqrtPrice), q96Float)
	out, _ := scaled.Int(nil)
	return out
}

// SqrtPriceX96ToPrice returns (sqrtPriceX96 / 2^96)^2. The integer is
// squared before the single floating-point division so precision loss
// happens as late as possible. A nil or zero input yields 0.
func SqrtPriceX96ToPrice(sqrtPriceX96 *big.Int) float64 {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() == 0 {
		return 0
	}
	squared := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	q96Squared := new(big.Int).Mul(Q96, Q96)
	ratio := new(big.Float).Quo(new(big.Float).SetInt(squared), new(big.Float).SetInt(q96Squared))
	out, _ := ratio.Float64()
	return out
}

// ParseSqrtPriceX96 validates a decimal sqrt-price string. An empty
// string parses as zero.
func ParseSqrtPriceX96(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	value, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid sqrt price: %s", s)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("sqrt price must not be negative: %s", s)
	}
	return value, nil
}

// FormatPrice renders a price for display: "0" for zero, "< 0.000001"
// below 1e-6, exponential notation above 1e6, otherwise fixed-point
// with the given number of digits.
func FormatPrice(price float64, decimals int) string {
	if price == 0 {
		return "0"
	}
	if price < 0.000001 {
		return "< 0.000001"
	}
	if price > 1000000 {
		return strconv.FormatFloat(price, 'e', 2, 64)
	}
	return strconv.FormatFloat(price, 'f', decimals, 64)
}

// FormatPriceDefault renders a price with six decimal digits.
func FormatPriceDefault(price float64) string {
	return FormatPrice(price, 6)
}

// FormatPriceRange renders the prices at two tick bounds as "lower - upper".
func FormatPriceRange(tickLower, tickUpper int32) string {
	return fmt.Sprintf("%s - %s",
		FormatPriceDefault(TickToPrice(tickLower)),
		FormatPriceDefault(TickToPrice(tickUpper)))
}

// RangeInfo bundles the prices at a position's tick bounds with their
// display forms.
type RangeInfo struct {
	PriceLower     float64
	PriceUpper     float64
	Formatted      string
	FormattedLower string
	FormattedUpper string
}

// PriceRangeInfo computes RangeInfo for a tick range.
func PriceRangeInfo(tickLower, tickUpper int32) RangeInfo {
	priceLower := TickToPrice(tickLower)
	priceUpper := TickToPrice(tickUpper)
	return RangeInfo{
		PriceLower:     priceLower,
		PriceUpper:     priceUpper,
		Formatted:      FormatPriceRange(tickLower, tickUpper),
		FormattedLower: FormatPriceDefault(priceLower),
		FormattedUpper: FormatPriceDefault(priceUpper),
	}
}

// CurrentInfo bundles a pool's current price with its display form.
type CurrentInfo struct {
	Price     float64
	Formatted string
}

// CurrentPriceInfo computes CurrentInfo from a pool's sqrtPriceX96.
func CurrentPriceInfo(sqrtPriceX96 *big.Int) CurrentInfo {
	p := SqrtPriceX96ToPrice(sqrtPriceX96)
	return CurrentInfo{Price: p, Formatted: FormatPriceDefault(p)}
}
