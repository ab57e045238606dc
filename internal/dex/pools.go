package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/huangpeipei/metanode-dex/internal/chain"
	"github.com/huangpeipei/metanode-dex/internal/model"
)

// rawPool matches the ABI layout of the pool manager's PoolInfo tuple.
type rawPool struct {
	Pool         common.Address
	Token0       common.Address
	Token1       common.Address
	Index        uint32
	Fee          *big.Int
	TickLower    *big.Int
	TickUpper    *big.Int
	Tick         *big.Int
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
}

type rawPair struct {
	Token0 common.Address
	Token1 common.Address
}

// FetchPools reads all pool snapshots from the pool manager.
func FetchPools(ctx context.Context, chainClient *chain.Client, manager common.Address) ([]model.Pool, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	managerABI, err := PoolManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool manager abi: %w", err)
	}

	values, err := callContract(ctx, chainClient, manager, managerABI, "getAllPools")
	if err != nil {
		return nil, err
	}
	raw := abi.ConvertType(values[0], new([]rawPool)).(*[]rawPool)

	pools := make([]model.Pool, 0, len(*raw))
	for _, entry := range *raw {
		tick, err := int24FromBig(entry.Tick)
		if err != nil {
			return nil, fmt.Errorf("pool %d tick: %w", entry.Index, err)
		}
		tickLower, err := int24FromBig(entry.TickLower)
		if err != nil {
			return nil, fmt.Errorf("pool %d tickLower: %w", entry.Index, err)
		}
		tickUpper, err := int24FromBig(entry.TickUpper)
		if err != nil {
			return nil, fmt.Errorf("pool %d tickUpper: %w", entry.Index, err)
		}

		pools = append(pools, model.Pool{
			PoolAddress:  entry.Pool,
			Token0:       entry.Token0,
			Token1:       entry.Token1,
			Fee:          uint32(entry.Fee.Uint64()),
			Index:        entry.Index,
			Liquidity:    new(big.Int).Set(entry.Liquidity),
			Tick:         tick,
			TickLower:    tickLower,
			TickUpper:    tickUpper,
			SqrtPriceX96: new(big.Int).Set(entry.SqrtPriceX96),
		})
	}
	return pools, nil
}

// FetchPairs reads the registered token pairs from the pool manager.
func FetchPairs(ctx context.Context, chainClient *chain.Client, manager common.Address) ([]model.Pair, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	managerABI, err := PoolManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool manager abi: %w", err)
	}

	values, err := callContract(ctx, chainClient, manager, managerABI, "getPairs")
	if err != nil {
		return nil, err
	}
	raw := abi.ConvertType(values[0], new([]rawPair)).(*[]rawPair)

	pairs := make([]model.Pair, 0, len(*raw))
	for _, entry := range *raw {
		pairs = append(pairs, model.Pair{Token0: entry.Token0, Token1: entry.Token1})
	}
	return pairs, nil
}

func callContract(ctx context.Context, chainClient *chain.Client, target common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := chainClient.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func int24FromBig(value *big.Int) (int32, error) {
	if value == nil {
		return 0, fmt.Errorf("nil value")
	}
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
