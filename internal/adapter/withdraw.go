package adapter

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// positions() tuple index of the liquidity field.
const positionLiquidityIndex = 7

// LiquidityToBurn computes floor(current * floor(percent) / 100). Fractional
// percentages are truncated to whole percents by policy, not rejected.
func LiquidityToBurn(current *big.Int, percent float64) *big.Int {
	if current == nil {
		return big.NewInt(0)
	}
	burn := new(big.Int).Mul(current, big.NewInt(int64(math.Floor(percent))))
	return burn.Div(burn, big.NewInt(100))
}

// PositionLiquidity re-reads the position's current liquidity from the
// position manager. Position state is never cached locally.
func (c *Client) PositionLiquidity(ctx context.Context, tokenID *big.Int) (*big.Int, error) {
	var out []interface{}
	if err := c.pm.Call(c.callOpts(ctx), &out, "positions", tokenID); err != nil {
		return nil, fmt.Errorf("read position %s: %w", tokenID, err)
	}
	if len(out) <= positionLiquidityIndex {
		return nil, fmt.Errorf("unexpected positions result length: %d", len(out))
	}
	liquidity, err := asBigInt(out[positionLiquidityIndex])
	if err != nil {
		return nil, fmt.Errorf("position liquidity: %w", err)
	}
	return liquidity, nil
}

// Withdraw burns a percentage of a position's current liquidity through the
// adapter. percent must be in (0, 100]. Withdrawal minimums are fixed at
// zero for this deployment.
func (c *Client) Withdraw(ctx context.Context, tokenID *big.Int, percent float64) (*types.Receipt, error) {
	if percent <= 0 || percent > 100 || math.IsNaN(percent) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPercentage, percent)
	}

	if err := c.checkOwner(ctx, tokenID); err != nil {
		return nil, err
	}

	current, err := c.PositionLiquidity(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	burn := LiquidityToBurn(current, percent)
	c.logger.Info("withdrawing liquidity",
		zap.String("token_id", tokenID.String()),
		zap.Float64("percent", percent),
		zap.String("current_liquidity", current.String()),
		zap.String("burn", burn.String()),
	)

	if err := c.ensureOperatorApproval(ctx, tokenID); err != nil {
		return nil, err
	}

	receipt, err := c.transactAndWait(ctx, c.adapter, "withdrawLiquidity",
		tokenID, burn, big.NewInt(0), big.NewInt(0))
	if err != nil {
		if burn.Sign() == 0 {
			return receipt, fmt.Errorf("%w: position %s", ErrNothingToWithdraw, tokenID)
		}
		return receipt, err
	}

	return receipt, nil
}

func (c *Client) checkOwner(ctx context.Context, tokenID *big.Int) error {
	var out []interface{}
	if err := c.pm.Call(c.callOpts(ctx), &out, "ownerOf", tokenID); err != nil {
		return fmt.Errorf("read owner of %s: %w", tokenID, err)
	}
	if len(out) != 1 {
		return fmt.Errorf("unexpected ownerOf result length: %d", len(out))
	}
	owner, err := asAddress(out[0])
	if err != nil {
		return fmt.Errorf("ownerOf: %w", err)
	}
	if owner != c.owner {
		return fmt.Errorf("%w: position %s is owned by %s", ErrNotOwner, tokenID, owner.Hex())
	}
	return nil
}

// ensureOperatorApproval makes sure the adapter may manage the position,
// accepting either a single-token approval or a blanket operator approval.
// When neither is present a blanket setApprovalForAll is issued once and
// never revoked by this system.
func (c *Client) ensureOperatorApproval(ctx context.Context, tokenID *big.Int) error {
	var out []interface{}
	if err := c.pm.Call(c.callOpts(ctx), &out, "getApproved", tokenID); err == nil && len(out) == 1 {
		if approved, err := asAddress(out[0]); err == nil && approved == c.adapterAddr {
			return nil
		}
	}

	out = out[:0]
	if err := c.pm.Call(c.callOpts(ctx), &out, "isApprovedForAll", c.owner, c.adapterAddr); err != nil {
		return fmt.Errorf("read operator approval: %w", err)
	}
	if len(out) != 1 {
		return fmt.Errorf("unexpected isApprovedForAll result length: %d", len(out))
	}
	approved, err := asBool(out[0])
	if err != nil {
		return fmt.Errorf("isApprovedForAll: %w", err)
	}
	if approved {
		return nil
	}

	c.logger.Info("granting operator approval", zap.String("operator", c.adapterAddr.Hex()))
	if _, err := c.transactAndWait(ctx, c.pm, "setApprovalForAll", c.adapterAddr, true); err != nil {
		return fmt.Errorf("%w: %v", ErrNotApproved, err)
	}
	return nil
}
