package router

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/huangpeipei/metanode-dex/internal/model"
	"github.com/huangpeipei/metanode-dex/internal/price"
)

var (
	tokenA = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tokenC = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func makePool(index uint32, fee uint32, liquidity int64) model.Pool {
	return model.Pool{
		Token0:       tokenA,
		Token1:       tokenB,
		Fee:          fee,
		Index:        index,
		Liquidity:    big.NewInt(liquidity),
		Tick:         0,
		TickLower:    -100,
		TickUpper:    100,
		SqrtPriceX96: new(big.Int).Set(price.Q96),
	}
}

func TestIsZeroForOne(t *testing.T) {
	if !IsZeroForOne(tokenA, tokenB) {
		t.Fatalf("tokenA < tokenB should be zeroForOne")
	}
	if IsZeroForOne(tokenB, tokenA) {
		t.Fatalf("tokenB > tokenA should not be zeroForOne")
	}
}

func TestFindOptimalPathSingle(t *testing.T) {
	pools := []model.Pool{makePool(0, 3000, 1000)}

	got := FindOptimalPath(pools, tokenA, tokenB, 0.5)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("path = %v, want [0]", got)
	}

	// Direction must not matter for pair matching.
	got = FindOptimalPath(pools, tokenB, tokenA, 0.5)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("reverse path = %v, want [0]", got)
	}
}

func TestFindOptimalPathRanking(t *testing.T) {
	// Higher liquidity wins even at a higher fee.
	deep := makePool(1, 10000, 5_000_000)
	cheap := makePool(2, 500, 1_000)

	got := FindOptimalPath([]model.Pool{cheap, deep}, tokenA, tokenB, 0.5)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("path = %v, want the deeper pool [1]", got)
	}
}

func TestFindOptimalPathFeeTieBreak(t *testing.T) {
	expensive := makePool(1, 10000, 1000)
	cheap := makePool(2, 500, 1000)

	got := FindOptimalPath([]model.Pool{expensive, cheap}, tokenA, tokenB, 0.5)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("path = %v, want the cheaper pool [2]", got)
	}
}

func TestFindOptimalPathExcludesOutOfRange(t *testing.T) {
	outOfRange := makePool(1, 500, 1000)
	outOfRange.Tick = 150

	got := FindOptimalPath([]model.Pool{outOfRange}, tokenA, tokenB, 0.5)
	if len(got) != 0 {
		t.Fatalf("out-of-range pool routed: %v", got)
	}
}

func TestFindOptimalPathExcludesZeroLiquidity(t *testing.T) {
	drained := makePool(1, 500, 0)

	got := FindOptimalPath([]model.Pool{drained}, tokenA, tokenB, 0.5)
	if len(got) != 0 {
		t.Fatalf("zero-liquidity pool routed: %v", got)
	}
}

func TestFindOptimalPathExcludesUnreachableLimit(t *testing.T) {
	// The pool's current price sits barely above its lower bound, so a
	// large downward slippage limit overshoots the range.
	narrow := makePool(1, 500, 1000)
	narrow.TickLower = -10
	narrow.TickUpper = 100

	got := FindOptimalPath([]model.Pool{narrow}, tokenA, tokenB, 40)
	if len(got) != 0 {
		t.Fatalf("pool with unreachable limit routed: %v", got)
	}

	// A tolerance inside the range keeps the pool routable.
	got = FindOptimalPath([]model.Pool{narrow}, tokenA, tokenB, 0.01)
	if len(got) != 1 {
		t.Fatalf("reachable limit rejected: %v", got)
	}
}

func TestFindOptimalPathEmptyInputs(t *testing.T) {
	if got := FindOptimalPath(nil, tokenA, tokenB, 0.5); len(got) != 0 {
		t.Fatalf("nil pools: %v", got)
	}
	pools := []model.Pool{makePool(0, 3000, 1000)}
	if got := FindOptimalPath(pools, common.Address{}, tokenB, 0.5); len(got) != 0 {
		t.Fatalf("missing tokenIn: %v", got)
	}
	if got := FindOptimalPath(pools, tokenA, tokenC, 0.5); len(got) != 0 {
		t.Fatalf("unrelated pair: %v", got)
	}
	if got := FindOptimalPath(pools, tokenA, tokenA, 0.5); len(got) != 0 {
		t.Fatalf("identical tokens: %v", got)
	}
}

func TestSelectPool(t *testing.T) {
	// Index 0 repeats across two different pairs.
	ab := makePool(0, 3000, 1000)
	cb := makePool(0, 3000, 1000)
	cb.Token0 = tokenB
	cb.Token1 = tokenC
	pools := []model.Pool{cb, ab}

	got := SelectPool(pools, []uint32{0}, tokenA, tokenB)
	if got == nil || got.Token0 != tokenA {
		t.Fatalf("SelectPool resolved the wrong pair: %+v", got)
	}

	if got := SelectPool(pools, nil, tokenA, tokenB); got != nil {
		t.Fatalf("empty path should resolve to nil")
	}
	if got := SelectPool(pools, []uint32{7}, tokenA, tokenB); got != nil {
		t.Fatalf("unknown index should resolve to nil")
	}
}
