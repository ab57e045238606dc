package swap

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/huangpeipei/metanode-dex/internal/model"
	"github.com/huangpeipei/metanode-dex/internal/price"
)

var (
	tokenA    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	recipient = common.HexToAddress("0x9000000000000000000000000000000000000009")
)

func testPool() model.Pool {
	return model.Pool{
		Token0:       tokenA,
		Token1:       tokenB,
		Fee:          3000,
		Index:        0,
		Liquidity:    big.NewInt(1_000_000),
		Tick:         0,
		TickLower:    -100,
		TickUpper:    100,
		SqrtPriceX96: new(big.Int).Set(price.Q96),
	}
}

func TestFlowFullSequence(t *testing.T) {
	flow := NewFlow()
	for _, step := range []Step{StepApproving, StepApproved, StepSwapping, StepConfirmed} {
		if err := flow.Advance(step); err != nil {
			t.Fatalf("advance to %s: %v", step, err)
		}
	}
	if flow.Step() != StepConfirmed {
		t.Fatalf("final step = %s, want confirmed", flow.Step())
	}
}

func TestFlowSkipsApproval(t *testing.T) {
	flow := NewFlow()
	if err := flow.Advance(StepSwapping); err != nil {
		t.Fatalf("idle -> swapping should be allowed when allowance covers the trade: %v", err)
	}
}

func TestFlowRejectsIllegalTransition(t *testing.T) {
	flow := NewFlow()
	if err := flow.Advance(StepConfirmed); err == nil {
		t.Fatalf("idle -> confirmed accepted")
	}
	if err := flow.Advance(StepApproved); err == nil {
		t.Fatalf("idle -> approved accepted")
	}
}

func TestFlowFailResets(t *testing.T) {
	flow := NewFlow()
	if err := flow.Advance(StepApproving); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flow.Fail()
	if flow.Step() != StepIdle {
		t.Fatalf("step after failure = %s, want idle", flow.Step())
	}
}

func TestNeedsApproval(t *testing.T) {
	if NeedsApproval(big.NewInt(100), big.NewInt(100)) {
		t.Fatalf("exact allowance should not need approval")
	}
	if !NeedsApproval(big.NewInt(99), big.NewInt(100)) {
		t.Fatalf("short allowance should need approval")
	}
	if !NeedsApproval(nil, big.NewInt(100)) {
		t.Fatalf("unknown allowance should need approval")
	}
	if NeedsApproval(nil, nil) {
		t.Fatalf("zero requirement should not need approval")
	}
}

func TestApprovalBudget(t *testing.T) {
	got := ApprovalBudget(big.NewInt(1000))
	if got.Cmp(big.NewInt(1100)) != 0 {
		t.Fatalf("budget = %s, want 1100", got)
	}
}

func TestPlanExactInput(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	params, err := PlanExactInput(testPool(), tokenA, tokenB, recipient, []uint32{0},
		big.NewInt(1_000_000), big.NewInt(2_000_000), 0.5, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if params.Deadline.Int64() != now.Add(20*time.Minute).Unix() {
		t.Fatalf("deadline = %s, want now+20m", params.Deadline)
	}
	if params.AmountOutMinimum.Cmp(big.NewInt(1_990_000)) != 0 {
		t.Fatalf("amountOutMinimum = %s, want 1990000", params.AmountOutMinimum)
	}
	if params.SqrtPriceLimitX96.Cmp(testPool().SqrtPriceX96) >= 0 {
		t.Fatalf("zeroForOne limit %s not below current price", params.SqrtPriceLimitX96)
	}
}

func TestPlanExactOutput(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	params, err := PlanExactOutput(testPool(), tokenB, tokenA, recipient, []uint32{0},
		big.NewInt(1_000_000), big.NewInt(2_000_000), 0.5, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if params.AmountInMaximum.Cmp(big.NewInt(2_010_000)) != 0 {
		t.Fatalf("amountInMaximum = %s, want 2010000", params.AmountInMaximum)
	}
	// tokenB -> tokenA raises the price; the limit must sit above current.
	if params.SqrtPriceLimitX96.Cmp(testPool().SqrtPriceX96) <= 0 {
		t.Fatalf("oneForZero limit %s not above current price", params.SqrtPriceLimitX96)
	}
}

func TestPlanRejectsBadLimit(t *testing.T) {
	// Current price pinned to the pool's lower bound: any downward limit
	// leaves the range, so the plan must refuse to build.
	pool := testPool()
	pool.SqrtPriceX96 = price.TickToSqrtPriceX96(pool.TickLower)

	_, err := PlanExactInput(pool, tokenA, tokenB, recipient, []uint32{0},
		big.NewInt(1_000_000), big.NewInt(2_000_000), 5, time.Now())
	if err == nil {
		t.Fatalf("expected price limit validation failure")
	}
	if !strings.Contains(err.Error(), "price limit") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPlanRejectsEmptyPath(t *testing.T) {
	if _, err := PlanExactInput(testPool(), tokenA, tokenB, recipient, nil,
		big.NewInt(1), big.NewInt(1), 0.5, time.Now()); err == nil {
		t.Fatalf("empty path accepted")
	}
}
