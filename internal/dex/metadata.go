package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/huangpeipei/metanode-dex/internal/chain"
	"github.com/huangpeipei/metanode-dex/internal/model"
)

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// Decimals returns the cached decimals for a token, or the 18-decimal
// default when metadata has not been fetched.
func (c *TokenMetaCache) Decimals(address common.Address) uint8 {
	if meta, ok := c.Get(address); ok {
		return meta.Decimals
	}
	return model.DefaultDecimals
}

// FetchTokenMeta loads ERC20 metadata. Decimals is required; symbol and
// name are best effort.
func FetchTokenMeta(ctx context.Context, chainClient *chain.Client, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex(), Decimals: model.DefaultDecimals}
	if chainClient == nil {
		return meta, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tokenABI, err := ERC20ABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 abi: %w", err)
	}

	values, err := callContract(ctx, chainClient, token, tokenABI, "decimals")
	if err != nil {
		return meta, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return meta, fmt.Errorf("decimals unexpected type %T", values[0])
	}
	meta.Decimals = decimals

	if values, err := callContract(ctx, chainClient, token, tokenABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := callContract(ctx, chainClient, token, tokenABI, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}

// Allowance reads the ERC20 allowance granted by owner to spender.
func Allowance(ctx context.Context, chainClient *chain.Client, token, owner, spender common.Address) (*big.Int, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	tokenABI, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	values, err := callContract(ctx, chainClient, token, tokenABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return amountFromValues(values, "allowance")
}

// BalanceOf reads the ERC20 balance of an account.
func BalanceOf(ctx context.Context, chainClient *chain.Client, token, account common.Address) (*big.Int, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	tokenABI, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	values, err := callContract(ctx, chainClient, token, tokenABI, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return amountFromValues(values, "balanceOf")
}
