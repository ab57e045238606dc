package liquidity

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatTokenAmount renders an amount in a token's smallest unit as a
// decimal string, trimming trailing zeros from the fractional part.
func FormatTokenAmount(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(amount, divisor, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}

	fracStr := frac.String()
	if pad := int(decimals) - len(fracStr); pad > 0 {
		fracStr = strings.Repeat("0", pad) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		return whole.String()
	}
	return whole.String() + "." + fracStr
}

// ParseTokenAmount parses a decimal string like "1.5" into a token's
// smallest unit. Fractional digits beyond the token's decimals are
// rejected rather than silently truncated.
func ParseTokenAmount(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount is empty")
	}

	wholeStr := s
	fracStr := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		wholeStr = s[:dot]
		fracStr = s[dot+1:]
	}
	if wholeStr == "" {
		wholeStr = "0"
	}
	if len(fracStr) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d fractional digits", s, decimals)
	}

	whole, ok := new(big.Int).SetString(wholeStr, 10)
	if !ok || whole.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	out := new(big.Int).Mul(whole, scale)

	if fracStr != "" {
		frac, ok := new(big.Int).SetString(fracStr, 10)
		if !ok || frac.Sign() < 0 {
			return nil, fmt.Errorf("invalid amount: %s", s)
		}
		pad := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(int(decimals)-len(fracStr))), nil)
		out.Add(out, frac.Mul(frac, pad))
	}

	return out, nil
}
