package adapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Full-range ticks for this deployment. Range selection centered on the
// current price is an explicit non-goal.
const (
	FullRangeTickLower int32 = -887220
	FullRangeTickUpper int32 = 887220
)

// AddLiquidityResult carries the mined receipt and, when the LiquidityAdded
// event could be extracted, the minted position id.
type AddLiquidityResult struct {
	TokenID *big.Int
	Receipt *types.Receipt
}

// AddLiquidity approves both tokens independently, opens a position through
// the adapter, and extracts the minted position id from the receipt logs.
// A confirmed transaction whose logs yield no position id returns the
// receipt together with ErrPositionIDNotFound; the position still exists
// on-chain.
func (c *Client) AddLiquidity(
	ctx context.Context,
	tokenA, tokenB common.Address,
	fee uint32,
	amountA, amountB *big.Int,
	tickLower, tickUpper int32,
) (AddLiquidityResult, error) {
	if err := c.EnsureAllowance(ctx, tokenA, amountA); err != nil {
		return AddLiquidityResult{}, err
	}
	if err := c.EnsureAllowance(ctx, tokenB, amountB); err != nil {
		return AddLiquidityResult{}, err
	}

	receipt, err := c.transactAndWait(ctx, c.adapter, "addLiquidity",
		tokenA, tokenB, feeArg(fee), amountA, amountB, tickArg(tickLower), tickArg(tickUpper))
	if err != nil {
		return AddLiquidityResult{Receipt: receipt}, err
	}

	result := AddLiquidityResult{Receipt: receipt}

	tokenID, found := PositionIDFromReceipt(receipt, c.adapterAddr)
	if !found {
		c.logger.Warn("no LiquidityAdded event in receipt", zap.String("tx_hash", receipt.TxHash.Hex()))
		return result, fmt.Errorf("%w: tx %s", ErrPositionIDNotFound, receipt.TxHash.Hex())
	}

	c.logger.Info("position opened",
		zap.String("token_id", tokenID.String()),
		zap.String("tx_hash", receipt.TxHash.Hex()),
	)
	result.TokenID = tokenID
	return result, nil
}

// PositionIDFromReceipt scans receipt logs in order for the first
// LiquidityAdded event emitted by the adapter. Logs from other contracts or
// logs that fail to decode against the adapter schema are expected noise and
// skipped silently.
func PositionIDFromReceipt(receipt *types.Receipt, adapterAddr common.Address) (*big.Int, bool) {
	if receipt == nil {
		return nil, false
	}

	decoder, err := NewEventDecoder()
	if err != nil {
		return nil, false
	}

	for _, log := range receipt.Logs {
		if log == nil || log.Address != adapterAddr {
			continue
		}
		event, err := decoder.DecodeLiquidityAdded(*log)
		if err != nil {
			continue
		}
		return event.TokenID, true
	}
	return nil, false
}
