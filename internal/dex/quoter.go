package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/huangpeipei/metanode-dex/internal/chain"
	"github.com/huangpeipei/metanode-dex/internal/quote"
)

// RouterQuoter implements quote.Quoter with read-only eth_call
// simulations against the swap router. The quote functions mutate pool
// state on chain, but an eth_call discards the mutation and returns the
// counter-amount.
type RouterQuoter struct {
	client *chain.Client
	router common.Address
}

// NewRouterQuoter builds a quoter bound to the router address.
func NewRouterQuoter(client *chain.Client, router common.Address) *RouterQuoter {
	return &RouterQuoter{client: client, router: router}
}

type quoteExactInputArgs struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	AmountIn          *big.Int
	SqrtPriceLimitX96 *big.Int
}

type quoteExactOutputArgs struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	AmountOut         *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteExactInput returns the output amount a swap of the exact input
// would produce at current pool state.
func (q *RouterQuoter) QuoteExactInput(ctx context.Context, params quote.Params) (*big.Int, error) {
	routerABI, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap router abi: %w", err)
	}

	args := quoteExactInputArgs{
		TokenIn:           params.TokenIn,
		TokenOut:          params.TokenOut,
		IndexPath:         params.IndexPath,
		AmountIn:          params.Amount,
		SqrtPriceLimitX96: params.SqrtPriceLimitX96,
	}
	values, err := callContract(ctx, q.client, q.router, routerABI, "quoteExactInput", args)
	if err != nil {
		return nil, err
	}
	return amountFromValues(values, "quoteExactInput")
}

// QuoteExactOutput returns the input amount a swap producing the exact
// output would consume at current pool state.
func (q *RouterQuoter) QuoteExactOutput(ctx context.Context, params quote.Params) (*big.Int, error) {
	routerABI, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap router abi: %w", err)
	}

	args := quoteExactOutputArgs{
		TokenIn:           params.TokenIn,
		TokenOut:          params.TokenOut,
		IndexPath:         params.IndexPath,
		AmountOut:         params.Amount,
		SqrtPriceLimitX96: params.SqrtPriceLimitX96,
	}
	values, err := callContract(ctx, q.client, q.router, routerABI, "quoteExactOutput", args)
	if err != nil {
		return nil, err
	}
	return amountFromValues(values, "quoteExactOutput")
}

func amountFromValues(values []interface{}, method string) (*big.Int, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%s return size %d", method, len(values))
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s unexpected type %T", method, values[0])
	}
	return amount, nil
}
