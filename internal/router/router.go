// Package router selects the pool a swap should execute against.
//
// Routing is single-hop: the returned path holds at most one pool
// index. The index path is a slice because the on-chain router accepts
// multi-hop paths, but this client never constructs one.
package router

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/huangpeipei/metanode-dex/internal/model"
	"github.com/huangpeipei/metanode-dex/internal/price"
	"github.com/huangpeipei/metanode-dex/internal/slippage"
)

// IsZeroForOne reports the trade direction: true when tokenIn is the
// lower address, following the contract's token-ordering convention.
// It compares the addresses themselves, not the pool's token0/token1
// slots.
func IsZeroForOne(tokenIn, tokenOut common.Address) bool {
	return bytes.Compare(tokenIn.Bytes(), tokenOut.Bytes()) < 0
}

// FindOptimalPath returns the index path for the best qualifying pool,
// or an empty slice when no pool can serve the trade. Callers must
// treat an empty path as "no route available".
//
// A pool qualifies when it serves the token pair, its current tick sits
// inside its active range, it holds liquidity, and the slippage-derived
// price limit is reachable within its tick bounds. Qualifying pools are
// ranked by liquidity descending so the deepest pool absorbs the trade
// with the least price impact; fee breaks ties in favor of the cheaper
// pool.
func FindOptimalPath(pools []model.Pool, tokenIn, tokenOut common.Address, slippagePercent float64) []uint32 {
	if len(pools) == 0 {
		return nil
	}
	zero := common.Address{}
	if tokenIn == zero || tokenOut == zero || tokenIn == tokenOut {
		return nil
	}

	zeroForOne := IsZeroForOne(tokenIn, tokenOut)

	candidates := make([]model.Pool, 0, len(pools))
	for _, pool := range pools {
		if !pool.MatchesPair(tokenIn, tokenOut) {
			continue
		}
		if !pool.InRange() {
			continue
		}
		if !pool.HasLiquidity() {
			continue
		}
		if !limitReachable(pool, slippagePercent, zeroForOne) {
			continue
		}
		candidates = append(candidates, pool)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		cmp := candidates[i].Liquidity.Cmp(candidates[j].Liquidity)
		if cmp != 0 {
			return cmp > 0
		}
		return candidates[i].Fee < candidates[j].Fee
	})

	return []uint32{candidates[0].Index}
}

// limitReachable checks that the slippage-derived price limit stays
// within the pool's tick-bound prices for the trade direction.
func limitReachable(pool model.Pool, slippagePercent float64, zeroForOne bool) bool {
	limit := slippage.SqrtPriceLimitX96(pool.SqrtPriceX96, slippagePercent, zeroForOne)
	if limit.Sign() == 0 {
		return false
	}
	if zeroForOne {
		return limit.Cmp(price.TickToSqrtPriceX96(pool.TickLower)) >= 0
	}
	return limit.Cmp(price.TickToSqrtPriceX96(pool.TickUpper)) <= 0
}

// SelectPool resolves an index path back to its pool, re-checking the
// token pair. Pool indices repeat across pairs, so the index alone does
// not identify a pool.
func SelectPool(pools []model.Pool, indexPath []uint32, tokenIn, tokenOut common.Address) *model.Pool {
	if len(indexPath) == 0 {
		return nil
	}
	target := indexPath[0]
	for i := range pools {
		if pools[i].Index != target {
			continue
		}
		if !pools[i].MatchesPair(tokenIn, tokenOut) {
			continue
		}
		return &pools[i]
	}
	return nil
}
