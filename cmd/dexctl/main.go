package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "dexctl",
		Short:        "DEX client-side routing and position math",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "Fetch pool snapshots from the pool manager",
		RunE:  runPools,
	}

	poolsCmd.Flags().String("rpc", "", "chain RPC URL")
	poolsCmd.Flags().String("pool-manager", "", "pool manager contract address")
	poolsCmd.Flags().String("out", "./data/pools.jsonl", "output JSONL path, empty to skip")
	poolsCmd.Flags().String("pg-dsn", "", "Postgres DSN, empty to skip")
	poolsCmd.Flags().Bool("watch", false, "keep following PoolCreated events")
	poolsCmd.Flags().Duration("watch-interval", 15*time.Second, "poll interval when watching")
	poolsCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	poolsCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	poolsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(poolsCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Route a swap and simulate its quote",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("rpc", "", "chain RPC URL")
	quoteCmd.Flags().String("pool-manager", "", "pool manager contract address")
	quoteCmd.Flags().String("swap-router", "", "swap router contract address")
	quoteCmd.Flags().String("token-in", "", "input token address")
	quoteCmd.Flags().String("token-out", "", "output token address")
	quoteCmd.Flags().String("amount-in", "", "exact input amount (decimal)")
	quoteCmd.Flags().String("amount-out", "", "exact output amount (decimal)")
	quoteCmd.Flags().Float64("slippage", 0.5, "slippage tolerance percent")
	quoteCmd.Flags().Duration("debounce", 500*time.Millisecond, "quote debounce window")
	quoteCmd.Flags().String("recipient", "", "recipient address for planned call params")
	quoteCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	quoteCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Compute amounts recoverable from a position",
		RunE:  runWithdraw,
	}

	withdrawCmd.Flags().String("liquidity", "", "position liquidity")
	withdrawCmd.Flags().Int32("tick-lower", 0, "position lower tick")
	withdrawCmd.Flags().Int32("tick-upper", 0, "position upper tick")
	withdrawCmd.Flags().Int32("tick", 0, "current pool tick")
	withdrawCmd.Flags().String("sqrt-price", "", "current sqrtPriceX96, preferred over --tick")
	withdrawCmd.Flags().String("tokens-owed0", "0", "accrued token0 fees")
	withdrawCmd.Flags().String("tokens-owed1", "0", "accrued token1 fees")
	withdrawCmd.Flags().Uint8("decimals", 18, "token decimals for display")

	root.AddCommand(withdrawCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
