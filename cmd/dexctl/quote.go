package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/huangpeipei/metanode-dex/internal/chain"
	"github.com/huangpeipei/metanode-dex/internal/config"
	"github.com/huangpeipei/metanode-dex/internal/dex"
	"github.com/huangpeipei/metanode-dex/internal/liquidity"
	"github.com/huangpeipei/metanode-dex/internal/model"
	"github.com/huangpeipei/metanode-dex/internal/quote"
	"github.com/huangpeipei/metanode-dex/internal/router"
	"github.com/huangpeipei/metanode-dex/internal/slippage"
	"github.com/huangpeipei/metanode-dex/internal/swap"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.PoolManager) {
		return fmt.Errorf("valid pool manager address is required")
	}
	if !common.IsHexAddress(cfg.SwapRouter) {
		return fmt.Errorf("valid swap router address is required")
	}

	tokenInStr, _ := cmd.Flags().GetString("token-in")
	tokenOutStr, _ := cmd.Flags().GetString("token-out")
	if !common.IsHexAddress(tokenInStr) || !common.IsHexAddress(tokenOutStr) {
		return fmt.Errorf("token-in and token-out must be valid addresses")
	}

	intent := quote.NewIntent()
	intent.TokenIn = common.HexToAddress(tokenInStr)
	intent.TokenOut = common.HexToAddress(tokenOutStr)
	intent.SlippagePercent = cfg.SlippagePercent

	amountIn, _ := cmd.Flags().GetString("amount-in")
	amountOut, _ := cmd.Flags().GetString("amount-out")
	switch {
	case amountIn != "" && amountOut != "":
		return fmt.Errorf("amount-in and amount-out are mutually exclusive")
	case amountIn != "":
		intent.SetAmountIn(amountIn)
	case amountOut != "":
		intent.SetAmountOut(amountOut)
	default:
		return fmt.Errorf("one of amount-in or amount-out is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	manager := common.HexToAddress(cfg.PoolManager)
	var pools []model.Pool
	err = dex.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		pools, err = dex.FetchPools(ctx, chainClient, manager)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch pools: %w", err)
	}

	indexPath := router.FindOptimalPath(pools, intent.TokenIn, intent.TokenOut, intent.SlippagePercent)
	if len(indexPath) == 0 {
		return fmt.Errorf("no route available for %s -> %s", intent.TokenIn.Hex(), intent.TokenOut.Hex())
	}
	selected := router.SelectPool(pools, indexPath, intent.TokenIn, intent.TokenOut)
	if selected == nil {
		return fmt.Errorf("route index %d did not resolve to a pool", indexPath[0])
	}

	tokens := dex.NewTokenMetaCache()
	for _, token := range []common.Address{intent.TokenIn, intent.TokenOut} {
		meta, err := dex.FetchTokenMeta(ctx, chainClient, token, logger)
		if err != nil {
			logger.Warn("token metadata fetch failed, assuming 18 decimals",
				zap.String("token", token.Hex()), zap.Error(err))
		}
		tokens.Set(token, meta)
	}

	editedDecimals := tokens.Decimals(intent.TokenIn)
	derivedDecimals := tokens.Decimals(intent.TokenOut)
	if intent.Editing == quote.EditAmountOut {
		editedDecimals, derivedDecimals = derivedDecimals, editedDecimals
	}

	amount, err := liquidity.ParseTokenAmount(intent.EditedAmount(), editedDecimals)
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}

	zeroForOne := router.IsZeroForOne(intent.TokenIn, intent.TokenOut)
	limit := slippage.SqrtPriceLimitX96(selected.SqrtPriceX96, intent.SlippagePercent, zeroForOne)

	fmt.Printf("route: pool %d (%s, fee=%s, liquidity=%s)\n",
		selected.Index, selected.PoolAddress.Hex(), formatFee(selected.Fee),
		liquidity.FormatTokenAmount(selected.Liquidity, 0))
	fmt.Printf("direction: zeroForOne=%v  price=%s  limit=%s\n",
		zeroForOne, selected.SqrtPriceX96.String(), limit.String())

	pipeline := quote.NewPipeline(dex.NewRouterQuoter(chainClient, common.HexToAddress(cfg.SwapRouter)), cfg.Debounce, logger)
	defer pipeline.Stop()

	results := make(chan quote.Result, 1)
	pipeline.Submit(ctx, quote.Request{
		Params: quote.Params{
			TokenIn:           intent.TokenIn,
			TokenOut:          intent.TokenOut,
			IndexPath:         indexPath,
			Amount:            amount,
			SqrtPriceLimitX96: limit,
		},
		Exact: intent.Editing,
	}, func(r quote.Result) { results <- r })

	var result quote.Result
	select {
	case result = <-results:
	case <-ctx.Done():
		return ctx.Err()
	}
	if result.Err != nil {
		return fmt.Errorf("quote simulation: %w", result.Err)
	}
	if result.Amount == nil {
		return fmt.Errorf("quote returned no amount")
	}

	intent.ApplyQuote(result.Amount, derivedDecimals)
	metaIn, _ := tokens.Get(intent.TokenIn)
	metaOut, _ := tokens.Get(intent.TokenOut)
	fmt.Printf("quote: amountIn=%s %s  amountOut=%s %s\n",
		intent.AmountIn, metaIn.Symbol, intent.AmountOut, metaOut.Symbol)

	recipientStr, _ := cmd.Flags().GetString("recipient")

	if intent.Editing == quote.EditAmountIn {
		minimum := slippage.AmountOutMinimum(result.Amount, intent.SlippagePercent)
		fmt.Printf("amountOutMinimum: %s\n", minimum.String())
		if common.IsHexAddress(recipientStr) {
			params, err := swap.PlanExactInput(*selected, intent.TokenIn, intent.TokenOut,
				common.HexToAddress(recipientStr), indexPath, amount, result.Amount,
				intent.SlippagePercent, time.Now())
			if err != nil {
				return err
			}
			printExactInputPlan(params)
		}
	} else {
		maximum := slippage.AmountInMaximum(result.Amount, intent.SlippagePercent)
		fmt.Printf("amountInMaximum: %s\n", maximum.String())
		fmt.Printf("approvalBudget: %s\n", swap.ApprovalBudget(result.Amount).String())
		if common.IsHexAddress(recipientStr) {
			params, err := swap.PlanExactOutput(*selected, intent.TokenIn, intent.TokenOut,
				common.HexToAddress(recipientStr), indexPath, amount, result.Amount,
				intent.SlippagePercent, time.Now())
			if err != nil {
				return err
			}
			printExactOutputPlan(params)
		}
	}

	return nil
}

func printExactInputPlan(params swap.ExactInputParams) {
	fmt.Printf("exactInput: recipient=%s deadline=%s amountIn=%s amountOutMinimum=%s sqrtPriceLimitX96=%s\n",
		params.Recipient.Hex(), params.Deadline.String(), params.AmountIn.String(),
		params.AmountOutMinimum.String(), params.SqrtPriceLimitX96.String())
}

func printExactOutputPlan(params swap.ExactOutputParams) {
	fmt.Printf("exactOutput: recipient=%s deadline=%s amountOut=%s amountInMaximum=%s sqrtPriceLimitX96=%s\n",
		params.Recipient.Hex(), params.Deadline.String(), params.AmountOut.String(),
		params.AmountInMaximum.String(), params.SqrtPriceLimitX96.String())
}
