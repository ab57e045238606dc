package liquidity

import (
	"math/big"
	"testing"

	"github.com/huangpeipei/metanode-dex/internal/model"
	"github.com/huangpeipei/metanode-dex/internal/price"
)

func TestTokenAmountsBelowRange(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)
	amounts := TokenAmounts(liquidity, -100, 100, CurrentAtTick(-200))

	if amounts.Amount0.Sign() != 0 {
		t.Fatalf("below range: amount0 = %s, want 0", amounts.Amount0)
	}
	if amounts.Amount1.Sign() <= 0 {
		t.Fatalf("below range: amount1 = %s, want > 0", amounts.Amount1)
	}
}

func TestTokenAmountsAboveRange(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)
	amounts := TokenAmounts(liquidity, -100, 100, CurrentAtTick(200))

	if amounts.Amount1.Sign() != 0 {
		t.Fatalf("above range: amount1 = %s, want 0", amounts.Amount1)
	}
	if amounts.Amount0.Sign() <= 0 {
		t.Fatalf("above range: amount0 = %s, want > 0", amounts.Amount0)
	}
}

func TestTokenAmountsInRange(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)
	amounts := TokenAmounts(liquidity, -100, 100, CurrentAtSqrtPrice(price.Q96))

	if amounts.Amount0.Sign() <= 0 || amounts.Amount1.Sign() <= 0 {
		t.Fatalf("in range: amounts = %s/%s, want both > 0", amounts.Amount0, amounts.Amount1)
	}
}

func TestTokenAmountsAtLowerBound(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)
	lower := price.TickToSqrtPriceX96(-100)
	amounts := TokenAmounts(liquidity, -100, 100, CurrentAtSqrtPrice(lower))

	if amounts.Amount0.Sign() != 0 {
		t.Fatalf("at lower bound: amount0 = %s, want 0", amounts.Amount0)
	}
	if amounts.Amount1.Sign() <= 0 {
		t.Fatalf("at lower bound: amount1 = %s, want > 0", amounts.Amount1)
	}
}

func TestTokenAmountsZeroLiquidity(t *testing.T) {
	amounts := TokenAmounts(new(big.Int), -100, 100, CurrentAtTick(0))
	if amounts.Amount0.Sign() != 0 || amounts.Amount1.Sign() != 0 {
		t.Fatalf("zero liquidity yielded %s/%s", amounts.Amount0, amounts.Amount1)
	}

	amounts = TokenAmounts(nil, -100, 100, CurrentAtTick(0))
	if amounts.Amount0.Sign() != 0 || amounts.Amount1.Sign() != 0 {
		t.Fatalf("nil liquidity yielded %s/%s", amounts.Amount0, amounts.Amount1)
	}
}

func TestTokenAmountsExtremeNegativeRange(t *testing.T) {
	// Near the minimum tick the sqrt prices are so small that the
	// Q96-scaled denominator truncates to zero. The token0 amount must
	// come back zero instead of dividing by it.
	liquidity := big.NewInt(1_000_000)

	amounts := TokenAmounts(liquidity, -887272, -600000, CurrentAtTick(0))
	if amounts.Amount0.Sign() != 0 {
		t.Fatalf("above extreme range: amount0 = %s, want 0", amounts.Amount0)
	}
	if amounts.Amount1.Sign() != 0 {
		t.Fatalf("above extreme range: amount1 = %s, want 0", amounts.Amount1)
	}

	amounts = TokenAmounts(liquidity, -887272, -800000, CurrentAtTick(-850000))
	if amounts.Amount0.Sign() != 0 {
		t.Fatalf("inside extreme range: amount0 = %s, want 0", amounts.Amount0)
	}
	if amounts.Amount1.Sign() < 0 {
		t.Fatalf("inside extreme range: amount1 = %s, want >= 0", amounts.Amount1)
	}
}

func TestTokenAmountsMidpointFallback(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)
	amounts := TokenAmounts(liquidity, -100, 100, CurrentPrice{})

	// The midpoint sits strictly inside the range, so both sides are held.
	if amounts.Amount0.Sign() <= 0 || amounts.Amount1.Sign() <= 0 {
		t.Fatalf("midpoint fallback: amounts = %s/%s, want both > 0", amounts.Amount0, amounts.Amount1)
	}
}

func TestPositionWithdrawalOutOfRange(t *testing.T) {
	pos := model.Position{
		Liquidity:   big.NewInt(1_000_000_000),
		TickLower:   -100,
		TickUpper:   100,
		TokensOwed0: big.NewInt(123),
		TokensOwed1: big.NewInt(456),
	}

	// Entirely below range: token0 principal is zero, so total0 is fees alone.
	w := PositionWithdrawal(pos, CurrentAtTick(-500), model.DefaultDecimals)
	if w.Principal0.Sign() != 0 {
		t.Fatalf("principal0 = %s, want 0", w.Principal0)
	}
	if w.Total0.Cmp(pos.TokensOwed0) != 0 {
		t.Fatalf("total0 = %s, want tokensOwed0 %s", w.Total0, pos.TokensOwed0)
	}
	want := new(big.Int).Add(w.Principal1, pos.TokensOwed1)
	if w.Total1.Cmp(want) != 0 {
		t.Fatalf("total1 = %s, want %s", w.Total1, want)
	}
}

func TestPositionWithdrawalNilFees(t *testing.T) {
	pos := model.Position{
		Liquidity: big.NewInt(1000),
		TickLower: -100,
		TickUpper: 100,
	}
	w := PositionWithdrawal(pos, CurrentAtTick(0), model.DefaultDecimals)
	if w.Fees0.Sign() != 0 || w.Fees1.Sign() != 0 {
		t.Fatalf("nil tokensOwed should format as zero fees: %s/%s", w.Fees0, w.Fees1)
	}
}

func TestFormatTokenAmount(t *testing.T) {
	cases := []struct {
		amount   string
		decimals uint8
		want     string
	}{
		{"0", 18, "0"},
		{"1000000000000000000", 18, "1"},
		{"1500000000000000000", 18, "1.5"},
		{"1000000000000000001", 18, "1.000000000000000001"},
		{"123", 18, "0.000000000000000123"},
		{"42", 0, "42"},
	}
	for _, tc := range cases {
		amount, _ := new(big.Int).SetString(tc.amount, 10)
		if got := FormatTokenAmount(amount, tc.decimals); got != tc.want {
			t.Fatalf("FormatTokenAmount(%s, %d) = %q, want %q", tc.amount, tc.decimals, got, tc.want)
		}
	}

	if got := FormatTokenAmount(nil, 18); got != "0" {
		t.Fatalf("nil amount = %q, want 0", got)
	}
}

func TestParseTokenAmount(t *testing.T) {
	got, err := ParseTokenAmount("1.5", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got.Cmp(want) != 0 {
		t.Fatalf("ParseTokenAmount(1.5) = %s, want %s", got, want)
	}

	if _, err := ParseTokenAmount("", 18); err == nil {
		t.Fatalf("expected error for empty amount")
	}
	if _, err := ParseTokenAmount("abc", 18); err == nil {
		t.Fatalf("expected error for malformed amount")
	}
	if _, err := ParseTokenAmount("0.1234567", 6); err == nil {
		t.Fatalf("expected error for excess fractional digits")
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	inputs := []string{"1", "1.5", "0.000000000000000123", "123456.789"}
	for _, input := range inputs {
		parsed, err := ParseTokenAmount(input, 18)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got := FormatTokenAmount(parsed, 18); got != input {
			t.Fatalf("round trip %q -> %q", input, got)
		}
	}
}
