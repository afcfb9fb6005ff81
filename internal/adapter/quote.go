package adapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Quote asks the adapter for the expected output of an exact-input swap.
// The result is advisory only and must be treated as stale after any
// state-changing call.
func (c *Client) Quote(ctx context.Context, tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) (*big.Int, error) {
	var out []interface{}
	err := c.adapter.Call(c.callOpts(ctx), &out, "getQuote", tokenIn, tokenOut, feeArg(fee), amountIn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: unexpected result length %d", ErrQuoteUnavailable, len(out))
	}

	amountOut, err := asBigInt(out[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	return amountOut, nil
}
