package quote

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// DefaultDebounce is the pause after the last edit before a simulation
// is issued.
const DefaultDebounce = 500 * time.Millisecond

// Params are the arguments of a read-only router simulation. Amount is
// the exact input or exact output depending on which quote is requested.
type Params struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	Amount            *big.Int
	SqrtPriceLimitX96 *big.Int
}

// Quoter simulates a swap against the on-chain router without
// submitting anything.
type Quoter interface {
	QuoteExactInput(ctx context.Context, params Params) (*big.Int, error)
	QuoteExactOutput(ctx context.Context, params Params) (*big.Int, error)
}

// Request asks the pipeline for one quote. Exact selects which side the
// amount fixes.
type Request struct {
	Params Params
	Exact  EditField
}

// Result is delivered once per non-stale request.
type Result struct {
	Exact  EditField
	Amount *big.Int
	Err    error
}

// Pipeline debounces quote requests and keeps at most one simulation in
// flight. A new request supersedes any pending or in-flight one; stale
// results are dropped so the intent only ever sees the quote for the
// user's latest edit (last-write-wins).
type Pipeline struct {
	quoter   Quoter
	debounce time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewPipeline builds a pipeline. A zero debounce falls back to
// DefaultDebounce; pass a small value in tests.
func NewPipeline(quoter Quoter, debounce time.Duration, logger *zap.Logger) *Pipeline {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{quoter: quoter, debounce: debounce, logger: logger}
}

// Submit schedules a quote for the request after the debounce window.
// An empty amount cancels any pending work immediately and delivers a
// nil-amount result, mirroring a cleared input field.
func (p *Pipeline) Submit(ctx context.Context, req Request, deliver func(Result)) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	if req.Params.Amount == nil || req.Params.Amount.Sign() <= 0 {
		p.mu.Unlock()
		deliver(Result{Exact: req.Exact})
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.timer = time.AfterFunc(p.debounce, func() {
		p.run(runCtx, gen, req, deliver)
	})
	p.mu.Unlock()
}

// Stop cancels any pending or in-flight work.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Pipeline) run(ctx context.Context, gen uint64, req Request, deliver func(Result)) {
	p.mu.Lock()
	stale := gen != p.gen
	p.mu.Unlock()
	if stale || ctx.Err() != nil {
		return
	}

	var amount *big.Int
	var err error
	if req.Exact == EditAmountIn {
		amount, err = p.quoter.QuoteExactInput(ctx, req.Params)
	} else {
		amount, err = p.quoter.QuoteExactOutput(ctx, req.Params)
	}

	p.mu.Lock()
	stale = gen != p.gen
	p.mu.Unlock()
	if stale || ctx.Err() != nil {
		p.logger.Debug("discarding stale quote", zap.Uint64("gen", gen))
		return
	}

	if err != nil {
		p.logger.Warn("quote simulation failed", zap.Error(err))
	}
	deliver(Result{Exact: req.Exact, Amount: amount, Err: err})

	// Release this request's context now that its result is delivered;
	// otherwise it stays live until the next Submit or Stop.
	p.mu.Lock()
	if gen == p.gen && p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
}
