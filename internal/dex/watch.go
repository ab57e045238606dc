package dex

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/huangpeipei/metanode-dex/internal/chain"
)

// WatchConfig controls the PoolCreated poll loop.
type WatchConfig struct {
	Manager      common.Address
	Interval     time.Duration
	StartBlock   uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// WatchPoolCreated polls for PoolCreated logs and invokes onCreated
// after each batch of new events, so callers can refresh their pool
// snapshots. Blocks until the context is canceled. Returns the last
// processed block so a caller persisting a cursor can resume.
func WatchPoolCreated(ctx context.Context, chainClient *chain.Client, cfg WatchConfig, logger *zap.Logger, onCreated func(ctx context.Context) error) (uint64, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}

	managerABI, err := PoolManagerABI()
	if err != nil {
		return cfg.StartBlock, err
	}
	topic0 := []common.Hash{managerABI.Events["PoolCreated"].ID}
	addresses := []common.Address{cfg.Manager}

	from := cfg.StartBlock
	if from == 0 {
		latest, err := chainClient.LatestBlockNumber(ctx)
		if err != nil {
			return 0, err
		}
		from = latest + 1
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return from - 1, ctx.Err()
		case <-ticker.C:
		}

		latest, err := chainClient.LatestBlockNumber(ctx)
		if err != nil {
			logger.Warn("latest block fetch failed", zap.Error(err))
			continue
		}
		if latest < from {
			continue
		}

		var logs int
		err = WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
			found, err := chainClient.FilterLogs(ctx, from, latest, addresses, topic0)
			if err != nil {
				return err
			}
			logs = len(found)
			return nil
		})
		if err != nil {
			logger.Warn("pool created filter failed", zap.Error(err), zap.Uint64("from", from), zap.Uint64("to", latest))
			continue
		}

		if logs > 0 {
			logger.Info("new pools created", zap.Int("events", logs), zap.Uint64("from", from), zap.Uint64("to", latest))
			if err := onCreated(ctx); err != nil {
				logger.Warn("pool refresh failed", zap.Error(err))
				continue
			}
		}
		from = latest + 1
	}
}
