// Package slippage turns a user-chosen slippage tolerance into
// contract-ready price limits and trade-amount bounds.
package slippage

import (
	"math"
	"math/big"

	"github.com/huangpeipei/metanode-dex/internal/price"
)

// basisPoints is the precision used for amount bounds.
var basisPoints = big.NewInt(10000)

// SqrtPriceLimitX96 derives a direction-aware price limit from a
// slippage percentage. For zeroForOne trades the price falls, so the
// limit sits below the current price; otherwise above. A zero current
// price returns the zero sentinel meaning "no limit". Float rounding
// can land the scaled value on the wrong side of current, in which case
// the limit is clamped to 0.1% away.
func SqrtPriceLimitX96(currentSqrtPriceX96 *big.Int, slippagePercent float64, zeroForOne bool) *big.Int {
	if currentSqrtPriceX96 == nil || currentSqrtPriceX96.Sign() == 0 {
		return new(big.Int)
	}

	fraction := slippagePercent / 100
	var multiplier float64
	if zeroForOne {
		multiplier = math.Sqrt(1 - fraction)
	} else {
		multiplier = math.Sqrt(1 + fraction)
	}

	scaled := new(big.Float).Mul(new(big.Float).SetInt(currentSqrtPriceX96), big.NewFloat(multiplier))
	limit, _ := scaled.Int(nil)

	if zeroForOne {
		if limit.Cmp(currentSqrtPriceX96) >= 0 {
			limit.Mul(currentSqrtPriceX96, big.NewInt(999))
			limit.Quo(limit, big.NewInt(1000))
		}
	} else {
		if limit.Cmp(currentSqrtPriceX96) <= 0 {
			limit.Mul(currentSqrtPriceX96, big.NewInt(1001))
			limit.Quo(limit, big.NewInt(1000))
		}
	}

	// Some router implementations reject an explicit zero limit.
	if limit.Sign() == 0 {
		return new(big.Int).Set(currentSqrtPriceX96)
	}
	return limit
}

// bpsFactor floors a multiplier to basis points. Exact-decimal slippage
// values land a hair below their true basis-point count in binary
// floating point (1 + 0.005 sits just under 1.005), so a small nudge is
// applied before flooring; values genuinely between basis points still
// truncate.
func bpsFactor(multiplier float64) *big.Int {
	return big.NewInt(int64(math.Floor(multiplier*10000 + 1e-6)))
}

// AmountOutMinimum adjusts an estimated output downward by the slippage
// tolerance at basis-point precision.
func AmountOutMinimum(estimatedAmountOut *big.Int, slippagePercent float64) *big.Int {
	if estimatedAmountOut == nil {
		return new(big.Int)
	}
	out := new(big.Int).Mul(estimatedAmountOut, bpsFactor(1-slippagePercent/100))
	return out.Quo(out, basisPoints)
}

// AmountInMaximum adjusts an estimated input upward by the slippage
// tolerance at basis-point precision.
func AmountInMaximum(estimatedAmountIn *big.Int, slippagePercent float64) *big.Int {
	if estimatedAmountIn == nil {
		return new(big.Int)
	}
	out := new(big.Int).Mul(estimatedAmountIn, bpsFactor(1+slippagePercent/100))
	return out.Quo(out, basisPoints)
}

// Validation is the outcome of a pre-submission price-limit check. A
// failed check carries a reason suitable for showing to the user; it is
// never an error because the caller aborts submission rather than
// unwinding.
type Validation struct {
	IsValid bool
	Reason  string
}

func invalid(reason string) Validation {
	return Validation{Reason: reason}
}

// ValidateSqrtPriceLimitX96 re-checks, immediately before a swap is
// built, that the limit lies on the correct side of the current price
// for the trade direction and within the pool's tick-bound prices on
// the permitted side.
func ValidateSqrtPriceLimitX96(currentSqrtPriceX96, limitSqrtPriceX96 *big.Int, tickLower, tickUpper int32, zeroForOne bool) Validation {
	if currentSqrtPriceX96 == nil || currentSqrtPriceX96.Sign() == 0 {
		return invalid("current sqrt price is zero")
	}
	if limitSqrtPriceX96 == nil || limitSqrtPriceX96.Sign() == 0 {
		return invalid("price limit is zero")
	}

	if zeroForOne {
		if limitSqrtPriceX96.Cmp(currentSqrtPriceX96) >= 0 {
			return invalid("price limit must be below the current price when selling token0")
		}
		lowerBound := price.TickToSqrtPriceX96(tickLower)
		if limitSqrtPriceX96.Cmp(lowerBound) < 0 {
			return invalid("price limit is below the pool's lower tick bound")
		}
	} else {
		if limitSqrtPriceX96.Cmp(currentSqrtPriceX96) <= 0 {
			return invalid("price limit must be above the current price when selling token1")
		}
		upperBound := price.TickToSqrtPriceX96(tickUpper)
		if limitSqrtPriceX96.Cmp(upperBound) > 0 {
			return invalid("price limit is above the pool's upper tick bound")
		}
	}

	return Validation{IsValid: true}
}
