// Package quote holds the local trade intent and the debounced quote
// pipeline that keeps its derived side up to date.
package quote

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/huangpeipei/metanode-dex/internal/liquidity"
)

// DefaultSlippagePercent is applied to a fresh intent.
const DefaultSlippagePercent = 0.5

// SlippagePresets are the tolerances offered to the user.
var SlippagePresets = []float64{0.1, 0.5, 1.0, 3.0}

// EditField marks which amount the user is editing. Exactly one side is
// user-owned at a time; the other side is derived from the last
// successful quote and overwritten freely.
type EditField int

const (
	EditAmountIn EditField = iota
	EditAmountOut
)

// Intent is the local swap state. It lives for the duration of a
// session, is mutated on every user edit, and is never persisted.
type Intent struct {
	TokenIn         common.Address
	TokenOut        common.Address
	AmountIn        string
	AmountOut       string
	Editing         EditField
	SlippagePercent float64
}

// NewIntent returns an empty intent with the default slippage tolerance.
func NewIntent() Intent {
	return Intent{SlippagePercent: DefaultSlippagePercent}
}

// SetAmountIn records a user edit of the input amount and switches the
// edited side to the input field.
func (i *Intent) SetAmountIn(amount string) {
	i.AmountIn = amount
	i.Editing = EditAmountIn
}

// SetAmountOut records a user edit of the output amount and switches
// the edited side to the output field.
func (i *Intent) SetAmountOut(amount string) {
	i.AmountOut = amount
	i.Editing = EditAmountOut
}

// ApplyQuote writes a quoted counter-amount into whichever field the
// user is not editing.
func (i *Intent) ApplyQuote(amount *big.Int, decimals uint8) {
	formatted := liquidity.FormatTokenAmount(amount, decimals)
	if i.Editing == EditAmountIn {
		i.AmountOut = formatted
	} else {
		i.AmountIn = formatted
	}
}

// EditedAmount returns the raw string of the side the user is editing.
func (i *Intent) EditedAmount() string {
	if i.Editing == EditAmountIn {
		return i.AmountIn
	}
	return i.AmountOut
}

// Ready reports whether the intent has both tokens selected and a
// non-empty edited amount, the minimum needed to request a quote.
func (i *Intent) Ready() bool {
	zero := common.Address{}
	return i.TokenIn != zero && i.TokenOut != zero && i.EditedAmount() != ""
}
