package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Pool is a read-only snapshot of an on-chain pool as returned by the
// pool manager. Token0 and Token1 are ordered by address, so Token0 < Token1.
type Pool struct {
	PoolAddress  common.Address
	Token0       common.Address
	Token1       common.Address
	Fee          uint32
	Index        uint32
	Liquidity    *big.Int
	Tick         int32
	TickLower    int32
	TickUpper    int32
	SqrtPriceX96 *big.Int
}

// InRange reports whether the pool's current tick sits inside its
// active range boundaries.
func (p Pool) InRange() bool {
	return p.Tick >= p.TickLower && p.Tick <= p.TickUpper
}

// HasLiquidity reports whether the pool holds non-zero liquidity.
func (p Pool) HasLiquidity() bool {
	return p.Liquidity != nil && p.Liquidity.Sign() > 0
}

// MatchesPair reports whether the pool serves the given token pair,
// regardless of direction.
func (p Pool) MatchesPair(tokenA, tokenB common.Address) bool {
	return (p.Token0 == tokenA && p.Token1 == tokenB) ||
		(p.Token0 == tokenB && p.Token1 == tokenA)
}

// PoolSnapshot is the storage representation of a Pool. Big integers are
// serialized as decimal strings.
type PoolSnapshot struct {
	ChainID      uint64 `json:"chain_id"`
	PoolAddress  string `json:"pool_address"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	Fee          uint32 `json:"fee"`
	Index        uint32 `json:"index"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
	TickLower    int32  `json:"tick_lower"`
	TickUpper    int32  `json:"tick_upper"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	FetchedAt    string `json:"fetched_at"`
}

// Snapshot converts the pool into its storage representation.
func (p Pool) Snapshot(chainID uint64, fetchedAt time.Time) PoolSnapshot {
	liquidity := "0"
	if p.Liquidity != nil {
		liquidity = p.Liquidity.String()
	}
	sqrtPrice := "0"
	if p.SqrtPriceX96 != nil {
		sqrtPrice = p.SqrtPriceX96.String()
	}
	return PoolSnapshot{
		ChainID:      chainID,
		PoolAddress:  p.PoolAddress.Hex(),
		Token0:       p.Token0.Hex(),
		Token1:       p.Token1.Hex(),
		Fee:          p.Fee,
		Index:        p.Index,
		Liquidity:    liquidity,
		Tick:         p.Tick,
		TickLower:    p.TickLower,
		TickUpper:    p.TickUpper,
		SqrtPriceX96: sqrtPrice,
		FetchedAt:    fetchedAt.UTC().Format(time.RFC3339),
	}
}

// Pair is a token pair registered with the pool manager.
type Pair struct {
	Token0 common.Address `json:"token0"`
	Token1 common.Address `json:"token1"`
}
