package swap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Writer submits prepared transactions. Implementations sign and send;
// this package only sequences the calls and tracks the flow state.
type Writer interface {
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) error
	ExactInput(ctx context.Context, params ExactInputParams) error
	ExactOutput(ctx context.Context, params ExactOutputParams) error
}

// ExecuteExactInput walks the flow through approval (when the allowance
// falls short of the input amount) and the exactInput swap. Any writer
// error resets the flow to idle and is returned wrapped.
func ExecuteExactInput(ctx context.Context, flow *Flow, w Writer, spender common.Address, allowance *big.Int, params ExactInputParams) error {
	if err := approveIfNeeded(ctx, flow, w, params.TokenIn, spender, allowance, params.AmountIn); err != nil {
		return err
	}

	if err := flow.Advance(StepSwapping); err != nil {
		return err
	}
	if err := w.ExactInput(ctx, params); err != nil {
		flow.Fail()
		return fmt.Errorf("exact input swap: %w", err)
	}
	return flow.Advance(StepConfirmed)
}

// ExecuteExactOutput is the exact-output counterpart. The approval
// amount is padded by ApprovalBudget because the executed input may
// exceed the quoted maximum estimate.
func ExecuteExactOutput(ctx context.Context, flow *Flow, w Writer, spender common.Address, allowance *big.Int, params ExactOutputParams) error {
	budget := ApprovalBudget(params.AmountInMaximum)
	if err := approveIfNeeded(ctx, flow, w, params.TokenIn, spender, allowance, budget); err != nil {
		return err
	}

	if err := flow.Advance(StepSwapping); err != nil {
		return err
	}
	if err := w.ExactOutput(ctx, params); err != nil {
		flow.Fail()
		return fmt.Errorf("exact output swap: %w", err)
	}
	return flow.Advance(StepConfirmed)
}

func approveIfNeeded(ctx context.Context, flow *Flow, w Writer, token, spender common.Address, allowance, required *big.Int) error {
	if !NeedsApproval(allowance, required) {
		return nil
	}
	if err := flow.Advance(StepApproving); err != nil {
		return err
	}
	if err := w.Approve(ctx, token, spender, required); err != nil {
		flow.Fail()
		return fmt.Errorf("approve: %w", err)
	}
	return flow.Advance(StepApproved)
}
