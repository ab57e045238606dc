// Package liquidity computes the token amounts recoverable from a
// concentrated-liquidity position.
package liquidity

import (
	"math/big"

	"github.com/huangpeipei/metanode-dex/internal/model"
	"github.com/huangpeipei/metanode-dex/internal/price"
)

// CurrentPrice selects how the pool's current price is supplied.
// SqrtPriceX96 wins when both are set. When neither is set the
// calculation falls back to the midpoint of the range bounds, a
// degraded estimate used only when no pool state is available.
type CurrentPrice struct {
	SqrtPriceX96 *big.Int
	Tick         *int32
}

// CurrentAtTick supplies the current price as a tick index.
func CurrentAtTick(tick int32) CurrentPrice {
	return CurrentPrice{Tick: &tick}
}

// CurrentAtSqrtPrice supplies the current price as a sqrtPriceX96 value.
func CurrentAtSqrtPrice(sqrtPriceX96 *big.Int) CurrentPrice {
	return CurrentPrice{SqrtPriceX96: sqrtPriceX96}
}

// Amounts holds the token amounts recoverable from a position's
// liquidity, in each token's smallest unit.
type Amounts struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// TokenAmounts computes the token0/token1 amounts recoverable if a
// position of the given liquidity and tick range were fully withdrawn
// at the current price. All arithmetic is unsigned big-integer with
// truncating division, matching the conservative lower-bound estimate
// the contract's accounting never undershoots.
func TokenAmounts(liquidity *big.Int, tickLower, tickUpper int32, current CurrentPrice) Amounts {
	amounts := Amounts{Amount0: new(big.Int), Amount1: new(big.Int)}
	if liquidity == nil || liquidity.Sign() <= 0 {
		return amounts
	}

	sqrtLower := price.TickToSqrtPriceX96(tickLower)
	sqrtUpper := price.TickToSqrtPriceX96(tickUpper)

	var sqrtCurrent *big.Int
	switch {
	case current.SqrtPriceX96 != nil && current.SqrtPriceX96.Sign() > 0:
		sqrtCurrent = current.SqrtPriceX96
	case current.Tick != nil:
		sqrtCurrent = price.TickToSqrtPriceX96(*current.Tick)
	default:
		sqrtCurrent = new(big.Int).Add(sqrtLower, sqrtUpper)
		sqrtCurrent.Quo(sqrtCurrent, big.NewInt(2))
	}

	switch {
	case sqrtCurrent.Cmp(sqrtLower) <= 0:
		// Price below range: the position holds only token1.
		diff := new(big.Int).Sub(sqrtUpper, sqrtLower)
		amounts.Amount1.Mul(liquidity, diff)
		amounts.Amount1.Quo(amounts.Amount1, price.Q96)
	case sqrtCurrent.Cmp(sqrtUpper) >= 0:
		// Price above range: the position holds only token0. At extreme
		// negative ticks the Q96-scaled denominator truncates to zero;
		// the amount stays zero rather than dividing by it.
		diff := new(big.Int).Sub(sqrtUpper, sqrtLower)
		denom := new(big.Int).Mul(sqrtUpper, sqrtLower)
		denom.Quo(denom, price.Q96)
		if denom.Sign() > 0 {
			amounts.Amount0.Mul(liquidity, diff)
			amounts.Amount0.Quo(amounts.Amount0, denom)
		}
	default:
		diff0 := new(big.Int).Sub(sqrtUpper, sqrtCurrent)
		denom0 := new(big.Int).Mul(sqrtCurrent, sqrtUpper)
		denom0.Quo(denom0, price.Q96)
		if denom0.Sign() > 0 {
			amounts.Amount0.Mul(liquidity, diff0)
			amounts.Amount0.Quo(amounts.Amount0, denom0)
		}

		diff1 := new(big.Int).Sub(sqrtCurrent, sqrtLower)
		amounts.Amount1.Mul(liquidity, diff1)
		amounts.Amount1.Quo(amounts.Amount1, price.Q96)
	}

	return amounts
}

// Withdrawal is the full picture of what a position returns on
// withdrawal: liquidity-derived principal, accrued fees, and their sum,
// each with a display string.
type Withdrawal struct {
	Principal0          *big.Int
	Principal1          *big.Int
	Fees0               *big.Int
	Fees1               *big.Int
	Total0              *big.Int
	Total1              *big.Int
	Principal0Formatted string
	Principal1Formatted string
	Fees0Formatted      string
	Fees1Formatted      string
	Total0Formatted     string
	Total1Formatted     string
}

// PositionWithdrawal combines the liquidity-derived amounts with the
// position's already-accrued tokensOwed fees.
func PositionWithdrawal(pos model.Position, current CurrentPrice, decimals uint8) Withdrawal {
	principal := TokenAmounts(pos.Liquidity, pos.TickLower, pos.TickUpper, current)

	fees0 := new(big.Int)
	if pos.TokensOwed0 != nil {
		fees0.Set(pos.TokensOwed0)
	}
	fees1 := new(big.Int)
	if pos.TokensOwed1 != nil {
		fees1.Set(pos.TokensOwed1)
	}

	total0 := new(big.Int).Add(principal.Amount0, fees0)
	total1 := new(big.Int).Add(principal.Amount1, fees1)

	return Withdrawal{
		Principal0:          principal.Amount0,
		Principal1:          principal.Amount1,
		Fees0:               fees0,
		Fees1:               fees1,
		Total0:              total0,
		Total1:              total1,
		Principal0Formatted: FormatTokenAmount(principal.Amount0, decimals),
		Principal1Formatted: FormatTokenAmount(principal.Amount1, decimals),
		Fees0Formatted:      FormatTokenAmount(fees0, decimals),
		Fees1Formatted:      FormatTokenAmount(fees1, decimals),
		Total0Formatted:     FormatTokenAmount(total0, decimals),
		Total1Formatted:     FormatTokenAmount(total1, decimals),
	}
}
