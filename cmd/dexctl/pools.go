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
	"github.com/huangpeipei/metanode-dex/internal/price"
	"github.com/huangpeipei/metanode-dex/internal/storage"
	"github.com/huangpeipei/metanode-dex/internal/storage/postgres"
)

const watchCursorName = "pool_created"

func runPools(cmd *cobra.Command, _ []string) error {
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
	manager := common.HexToAddress(cfg.PoolManager)

	watch, _ := cmd.Flags().GetBool("watch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	var sinks []storage.Storage
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	var pgStore *postgres.Store
	if cfg.PGDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
	}

	refresh := func(ctx context.Context) error {
		var pools []model.Pool
		err := dex.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			pools, err = dex.FetchPools(ctx, chainClient, manager)
			if err != nil {
				logger.Warn("fetch pools failed", zap.Error(err))
			}
			return err
		})
		if err != nil {
			return err
		}

		printPools(pools)

		snapshots := make([]model.PoolSnapshot, 0, len(pools))
		now := time.Now()
		for _, pool := range pools {
			snapshots = append(snapshots, pool.Snapshot(chainID.Uint64(), now))
		}
		for _, sink := range sinks {
			if err := sink.PutPoolSnapshots(snapshots); err != nil {
				return fmt.Errorf("store snapshots: %w", err)
			}
		}
		if pgStore != nil {
			if err := pgStore.UpsertPoolSnapshots(ctx, snapshots); err != nil {
				return fmt.Errorf("upsert snapshots: %w", err)
			}
		}

		logger.Info("pools refreshed", zap.Int("pools", len(pools)))
		return nil
	}

	if err := refresh(ctx); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	watchCfg := dex.WatchConfig{
		Manager:      manager,
		Interval:     cfg.WatchInterval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}
	if pgStore != nil {
		if block, ok, err := pgStore.LoadCursor(ctx, watchCursorName); err != nil {
			return err
		} else if ok {
			watchCfg.StartBlock = block + 1
			logger.Info("resume watch from cursor", zap.Uint64("last_processed", block))
		}
	}

	logger.Info("watching pool created events",
		zap.String("manager", manager.Hex()),
		zap.Duration("interval", watchCfg.Interval),
	)

	last, err := dex.WatchPoolCreated(ctx, chainClient, watchCfg, logger, refresh)
	if pgStore != nil && last > 0 {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if saveErr := pgStore.SaveCursor(saveCtx, watchCursorName, last); saveErr != nil {
			logger.Warn("save cursor failed", zap.Error(saveErr))
		}
	}
	if err != nil && ctx.Err() != nil {
		// Canceled by signal; a clean stop.
		return nil
	}
	return err
}

func printPools(pools []model.Pool) {
	for _, pool := range pools {
		status := "in-range"
		if !pool.InRange() {
			status = "out-of-range"
		}
		fmt.Printf("pool %d  %s/%s  fee=%s  liquidity=%s  tick=%d [%d, %d]  price=%s  range=%s  %s\n",
			pool.Index,
			pool.Token0.Hex(),
			pool.Token1.Hex(),
			formatFee(pool.Fee),
			liquidity.FormatTokenAmount(pool.Liquidity, 0),
			pool.Tick,
			pool.TickLower,
			pool.TickUpper,
			price.CurrentPriceInfo(pool.SqrtPriceX96).Formatted,
			price.FormatPriceRange(pool.TickLower, pool.TickUpper),
			status,
		)
	}
}

// formatFee renders a hundredths-of-a-bip fee as a percentage.
func formatFee(fee uint32) string {
	return fmt.Sprintf("%.2f%%", float64(fee)/10000)
}
