package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huangpeipei/metanode-dex/internal/model"
)

// Store provides Postgres persistence for pool snapshots and the watch
// loop cursor.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPoolSnapshots inserts or updates pool snapshots keyed by
// (chain_id, pool_address, pool_index).
func (s *Store) UpsertPoolSnapshots(ctx context.Context, snapshots []model.PoolSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snapshot := range snapshots {
		batch.Queue(`
			INSERT INTO pool_snapshots (
				chain_id, pool_address, token0, token1, fee, pool_index,
				liquidity, tick, tick_lower, tick_upper, sqrt_price_x96, fetched_at,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
			ON CONFLICT (chain_id, pool_address, pool_index)
			DO UPDATE SET
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				fee = EXCLUDED.fee,
				liquidity = EXCLUDED.liquidity,
				tick = EXCLUDED.tick,
				tick_lower = EXCLUDED.tick_lower,
				tick_upper = EXCLUDED.tick_upper,
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				fetched_at = EXCLUDED.fetched_at,
				updated_at = now()
		`,
			int64(snapshot.ChainID),
			snapshot.PoolAddress,
			snapshot.Token0,
			snapshot.Token1,
			snapshot.Fee,
			snapshot.Index,
			snapshot.Liquidity,
			snapshot.Tick,
			snapshot.TickLower,
			snapshot.TickUpper,
			snapshot.SqrtPriceX96,
			snapshot.FetchedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadCursor returns the last processed block for a named watch loop.
func (s *Store) LoadCursor(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("cursor name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM watch_cursor WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveCursor upserts the last processed block for a named watch loop.
func (s *Store) SaveCursor(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("cursor name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO watch_cursor (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, block)
	return err
}
