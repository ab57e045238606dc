package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/huangpeipei/metanode-dex/internal/liquidity"
	"github.com/huangpeipei/metanode-dex/internal/model"
	"github.com/huangpeipei/metanode-dex/internal/price"
)

func runWithdraw(cmd *cobra.Command, _ []string) error {
	liquidityStr, _ := cmd.Flags().GetString("liquidity")
	tickLower, _ := cmd.Flags().GetInt32("tick-lower")
	tickUpper, _ := cmd.Flags().GetInt32("tick-upper")
	decimals, _ := cmd.Flags().GetUint8("decimals")

	if liquidityStr == "" {
		return fmt.Errorf("liquidity is required")
	}
	if tickLower >= tickUpper {
		return fmt.Errorf("tick-lower %d must be below tick-upper %d", tickLower, tickUpper)
	}

	liq, ok := new(big.Int).SetString(liquidityStr, 10)
	if !ok || liq.Sign() < 0 {
		return fmt.Errorf("invalid liquidity %q", liquidityStr)
	}

	owed0, err := parseOwed(cmd, "tokens-owed0")
	if err != nil {
		return err
	}
	owed1, err := parseOwed(cmd, "tokens-owed1")
	if err != nil {
		return err
	}

	var current liquidity.CurrentPrice
	if sqrtStr, _ := cmd.Flags().GetString("sqrt-price"); sqrtStr != "" {
		sqrtPrice, err := price.ParseSqrtPriceX96(sqrtStr)
		if err != nil {
			return fmt.Errorf("parse sqrt-price: %w", err)
		}
		current = liquidity.CurrentAtSqrtPrice(sqrtPrice)
	} else if cmd.Flags().Changed("tick") {
		tick, _ := cmd.Flags().GetInt32("tick")
		current = liquidity.CurrentAtTick(tick)
	}

	pos := model.Position{
		Liquidity:   liq,
		TickLower:   tickLower,
		TickUpper:   tickUpper,
		TokensOwed0: owed0,
		TokensOwed1: owed1,
	}

	w := liquidity.PositionWithdrawal(pos, current, decimals)

	fmt.Printf("range: [%d, %d]  price=%s\n", tickLower, tickUpper,
		price.FormatPriceRange(tickLower, tickUpper))
	fmt.Printf("principal: token0=%s  token1=%s\n", w.Principal0Formatted, w.Principal1Formatted)
	fmt.Printf("fees:      token0=%s  token1=%s\n", w.Fees0Formatted, w.Fees1Formatted)
	fmt.Printf("total:     token0=%s  token1=%s\n", w.Total0Formatted, w.Total1Formatted)

	return nil
}

func parseOwed(cmd *cobra.Command, name string) (*big.Int, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return new(big.Int), nil
	}
	owed, ok := new(big.Int).SetString(raw, 10)
	if !ok || owed.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return owed, nil
}
