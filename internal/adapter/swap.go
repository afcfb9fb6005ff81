package adapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// MinOutFromQuote computes the 1% slippage guard for a prior quote:
// floor(quote * 99 / 100). Integer floor keeps the guard at least as strict
// as the nominal tolerance.
func MinOutFromQuote(quote *big.Int) *big.Int {
	if quote == nil {
		return big.NewInt(0)
	}
	minOut := new(big.Int).Mul(quote, big.NewInt(99))
	return minOut.Div(minOut, big.NewInt(100))
}

// Swap executes an exact-input swap through the adapter. When priorQuote is
// set the swap is guarded by MinOutFromQuote; a nil priorQuote means the
// caller opted out of slippage protection and minOut is zero. Any guarded
// revert is reported as ErrSlippageExceeded even when the pool reverted for
// an unrelated reason; the underlying cause stays in the error message.
func (c *Client) Swap(
	ctx context.Context,
	tokenIn, tokenOut common.Address,
	fee uint32,
	amountIn *big.Int,
	priorQuote *big.Int,
) (*types.Receipt, error) {
	if err := c.EnsureAllowance(ctx, tokenIn, amountIn); err != nil {
		return nil, err
	}

	minOut := big.NewInt(0)
	if priorQuote != nil {
		minOut = MinOutFromQuote(priorQuote)
		c.logger.Info("slippage guard set",
			zap.String("quote", priorQuote.String()),
			zap.String("min_out", minOut.String()),
		)
	} else {
		c.logger.Info("no prior quote, swapping unguarded")
	}

	receipt, err := c.transactAndWait(ctx, c.adapter, "swapExactInput",
		tokenIn, tokenOut, feeArg(fee), amountIn, minOut)
	if err != nil {
		if minOut.Sign() > 0 {
			return receipt, fmt.Errorf("%w: min out %s: %v", ErrSlippageExceeded, minOut, err)
		}
		return receipt, err
	}

	return receipt, nil
}
