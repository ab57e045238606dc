package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Position is a read-only snapshot of a liquidity position. TokensOwed0
// and TokensOwed1 are fees already accrued to the position but not yet
// collected, tracked separately from the liquidity-derived principal.
type Position struct {
	Owner       common.Address
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	Liquidity   *big.Int
	TickLower   int32
	TickUpper   int32
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}
