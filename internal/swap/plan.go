package swap

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/huangpeipei/metanode-dex/internal/model"
	"github.com/huangpeipei/metanode-dex/internal/router"
	"github.com/huangpeipei/metanode-dex/internal/slippage"
)

// deadlineWindow is how long a built transaction stays valid.
const deadlineWindow = 20 * time.Minute

// ExactInputParams mirror the router's exactInput call struct.
type ExactInputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// ExactOutputParams mirror the router's exactOutput call struct.
type ExactOutputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	Recipient         common.Address
	Deadline          *big.Int
	AmountOut         *big.Int
	AmountInMaximum   *big.Int
	SqrtPriceLimitX96 *big.Int
}

// PlanExactInput assembles exactInput call parameters against the given
// pool, re-validating the slippage-derived price limit before anything
// is built. estimatedAmountOut comes from the preceding quote
// simulation and bounds the acceptable output.
func PlanExactInput(pool model.Pool, tokenIn, tokenOut, recipient common.Address, indexPath []uint32, amountIn, estimatedAmountOut *big.Int, slippagePercent float64, now time.Time) (ExactInputParams, error) {
	if len(indexPath) == 0 {
		return ExactInputParams{}, fmt.Errorf("no route available")
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return ExactInputParams{}, fmt.Errorf("amount in must be positive")
	}

	limit, err := priceLimit(pool, tokenIn, tokenOut, slippagePercent)
	if err != nil {
		return ExactInputParams{}, err
	}

	return ExactInputParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		IndexPath:         indexPath,
		Recipient:         recipient,
		Deadline:          deadline(now),
		AmountIn:          amountIn,
		AmountOutMinimum:  slippage.AmountOutMinimum(estimatedAmountOut, slippagePercent),
		SqrtPriceLimitX96: limit,
	}, nil
}

// PlanExactOutput assembles exactOutput call parameters. The input
// bound derives from the quoted input estimate.
func PlanExactOutput(pool model.Pool, tokenIn, tokenOut, recipient common.Address, indexPath []uint32, amountOut, estimatedAmountIn *big.Int, slippagePercent float64, now time.Time) (ExactOutputParams, error) {
	if len(indexPath) == 0 {
		return ExactOutputParams{}, fmt.Errorf("no route available")
	}
	if amountOut == nil || amountOut.Sign() <= 0 {
		return ExactOutputParams{}, fmt.Errorf("amount out must be positive")
	}

	limit, err := priceLimit(pool, tokenIn, tokenOut, slippagePercent)
	if err != nil {
		return ExactOutputParams{}, err
	}

	return ExactOutputParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		IndexPath:         indexPath,
		Recipient:         recipient,
		Deadline:          deadline(now),
		AmountOut:         amountOut,
		AmountInMaximum:   slippage.AmountInMaximum(estimatedAmountIn, slippagePercent),
		SqrtPriceLimitX96: limit,
	}, nil
}

func priceLimit(pool model.Pool, tokenIn, tokenOut common.Address, slippagePercent float64) (*big.Int, error) {
	zeroForOne := router.IsZeroForOne(tokenIn, tokenOut)
	limit := slippage.SqrtPriceLimitX96(pool.SqrtPriceX96, slippagePercent, zeroForOne)

	validation := slippage.ValidateSqrtPriceLimitX96(pool.SqrtPriceX96, limit, pool.TickLower, pool.TickUpper, zeroForOne)
	if !validation.IsValid {
		return nil, fmt.Errorf("price limit validation failed: %s", validation.Reason)
	}
	return limit, nil
}

func deadline(now time.Time) *big.Int {
	return big.NewInt(now.Add(deadlineWindow).Unix())
}
