package slippage

import (
	"math/big"
	"testing"

	"github.com/huangpeipei/metanode-dex/internal/price"
)

func TestSqrtPriceLimitDirection(t *testing.T) {
	current := new(big.Int).Set(price.Q96)

	for _, pct := range []float64{0.1, 0.5, 1.0, 3.0, 50} {
		down := SqrtPriceLimitX96(current, pct, true)
		if down.Cmp(current) >= 0 {
			t.Fatalf("slippage %v: zeroForOne limit %s not strictly below current", pct, down)
		}

		up := SqrtPriceLimitX96(current, pct, false)
		if up.Cmp(current) <= 0 {
			t.Fatalf("slippage %v: oneForZero limit %s not strictly above current", pct, up)
		}
	}
}

func TestSqrtPriceLimitZeroCurrent(t *testing.T) {
	if got := SqrtPriceLimitX96(new(big.Int), 0.5, true); got.Sign() != 0 {
		t.Fatalf("zero current price: got %s, want 0 sentinel", got)
	}
	if got := SqrtPriceLimitX96(nil, 0.5, true); got.Sign() != 0 {
		t.Fatalf("nil current price: got %s, want 0 sentinel", got)
	}
}

func TestSqrtPriceLimitClampOnZeroSlippage(t *testing.T) {
	current := new(big.Int).Set(price.Q96)

	// Zero slippage rounds the scaled value onto the current price; the
	// clamp must keep the limit strictly on the trade side.
	down := SqrtPriceLimitX96(current, 0, true)
	want := new(big.Int).Mul(current, big.NewInt(999))
	want.Quo(want, big.NewInt(1000))
	if down.Cmp(want) != 0 {
		t.Fatalf("clamped limit = %s, want %s", down, want)
	}

	up := SqrtPriceLimitX96(current, 0, false)
	want = new(big.Int).Mul(current, big.NewInt(1001))
	want.Quo(want, big.NewInt(1000))
	if up.Cmp(want) != 0 {
		t.Fatalf("clamped limit = %s, want %s", up, want)
	}
}

func TestAmountOutMinimum(t *testing.T) {
	// Every exact-decimal preset must hit its basis-point count exactly;
	// binary floating point alone would truncate some of them a point low.
	cases := []struct {
		pct  float64
		want int64
	}{
		{0.1, 999_000},
		{0.5, 995_000},
		{1.0, 990_000},
		{3.0, 970_000},
		{50, 500_000},
	}
	for _, tc := range cases {
		got := AmountOutMinimum(big.NewInt(1_000_000), tc.pct)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("AmountOutMinimum(1e6, %v) = %s, want %d", tc.pct, got, tc.want)
		}
	}

	if got := AmountOutMinimum(nil, 0.5); got.Sign() != 0 {
		t.Fatalf("nil estimate: got %s, want 0", got)
	}
}

func TestAmountInMaximum(t *testing.T) {
	cases := []struct {
		pct  float64
		want int64
	}{
		{0.1, 1_001_000},
		{0.5, 1_005_000},
		{1.0, 1_010_000},
		{3.0, 1_030_000},
		{50, 1_500_000},
	}
	for _, tc := range cases {
		got := AmountInMaximum(big.NewInt(1_000_000), tc.pct)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("AmountInMaximum(1e6, %v) = %s, want %d", tc.pct, got, tc.want)
		}
	}

	// A tolerance between basis points still floors.
	got := AmountInMaximum(big.NewInt(1_000_000), 0.333)
	if got.Cmp(big.NewInt(1_003_300)) != 0 {
		t.Fatalf("AmountInMaximum(1e6, 0.333) = %s, want 1003300", got)
	}
}

func TestValidateWrongSide(t *testing.T) {
	current := new(big.Int).Set(price.Q96)
	above := new(big.Int).Add(current, big.NewInt(1))
	below := new(big.Int).Sub(current, big.NewInt(1))

	// zeroForOne requires the limit below current, regardless of range.
	v := ValidateSqrtPriceLimitX96(current, above, -887272, 887272, true)
	if v.IsValid {
		t.Fatalf("limit above current accepted for zeroForOne")
	}
	if v.Reason == "" {
		t.Fatalf("invalid result carries no reason")
	}

	v = ValidateSqrtPriceLimitX96(current, below, -887272, 887272, false)
	if v.IsValid {
		t.Fatalf("limit below current accepted for oneForZero")
	}
}

func TestValidateRangeBounds(t *testing.T) {
	current := new(big.Int).Set(price.Q96)

	// A limit below the pool's lower bound is unreachable.
	tooLow := price.TickToSqrtPriceX96(-200)
	v := ValidateSqrtPriceLimitX96(current, tooLow, -100, 100, true)
	if v.IsValid {
		t.Fatalf("limit below tickLower accepted")
	}

	tooHigh := price.TickToSqrtPriceX96(200)
	v = ValidateSqrtPriceLimitX96(current, tooHigh, -100, 100, false)
	if v.IsValid {
		t.Fatalf("limit above tickUpper accepted")
	}

	within := SqrtPriceLimitX96(current, 0.5, true)
	v = ValidateSqrtPriceLimitX96(current, within, -100, 100, true)
	if !v.IsValid {
		t.Fatalf("in-range limit rejected: %s", v.Reason)
	}
}

func TestValidateZeroInputs(t *testing.T) {
	if v := ValidateSqrtPriceLimitX96(new(big.Int), price.Q96, -100, 100, true); v.IsValid {
		t.Fatalf("zero current price accepted")
	}
	if v := ValidateSqrtPriceLimitX96(price.Q96, new(big.Int), -100, 100, true); v.IsValid {
		t.Fatalf("zero limit accepted")
	}
}
