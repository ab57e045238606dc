// Package swap models the client-side swap submission flow: the
// approval/swap state machine and the builders that assemble
// contract-ready call parameters. Signing and sending transactions is
// the caller's job; nothing here touches a key or the network.
package swap

import (
	"fmt"
	"math/big"
	"sync"
)

// Step is a stage of the swap submission flow.
type Step int

const (
	StepIdle Step = iota
	StepApproving
	StepApproved
	StepSwapping
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepApproving:
		return "approving"
	case StepApproved:
		return "approved"
	case StepSwapping:
		return "swapping"
	case StepConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Flow tracks the submission state machine:
//
//	idle -> approving -> approved -> swapping -> confirmed
//
// Approval is skipped (idle -> swapping) when the current allowance
// already covers the trade. Any write error resets the flow to idle.
type Flow struct {
	mu   sync.Mutex
	step Step
}

// NewFlow starts at StepIdle.
func NewFlow() *Flow {
	return &Flow{}
}

// Step returns the current stage.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

var transitions = map[Step][]Step{
	StepIdle:      {StepApproving, StepSwapping},
	StepApproving: {StepApproved},
	StepApproved:  {StepSwapping},
	StepSwapping:  {StepConfirmed},
}

// Advance moves the flow to the next stage, rejecting transitions the
// state machine does not allow.
func (f *Flow) Advance(to Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, allowed := range transitions[f.step] {
		if allowed == to {
			f.step = to
			return nil
		}
	}
	return fmt.Errorf("invalid transition %s -> %s", f.step, to)
}

// Fail resets the flow to idle from any stage, the response to a write
// error at any point.
func (f *Flow) Fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepIdle
}

// NeedsApproval reports whether the current allowance is insufficient
// for the required amount.
func NeedsApproval(allowance, required *big.Int) bool {
	if required == nil || required.Sign() <= 0 {
		return false
	}
	if allowance == nil {
		return true
	}
	return allowance.Cmp(required) < 0
}

// ApprovalBudget pads a quoted input amount by 10%. Exact-output swaps
// approve against an estimate, and the executed input may drift above
// it before the transaction lands.
func ApprovalBudget(quotedAmountIn *big.Int) *big.Int {
	if quotedAmountIn == nil {
		return new(big.Int)
	}
	budget := new(big.Int).Mul(quotedAmountIn, big.NewInt(110))
	return budget.Quo(budget, big.NewInt(100))
}
