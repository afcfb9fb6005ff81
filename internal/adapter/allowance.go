package adapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// EnsureAllowance guarantees the adapter may spend at least required of the
// signer's token. When the current allowance already covers the requirement
// no transaction is issued. Allowances are only ever raised, never lowered,
// and the on-chain value is re-read on every call.
func (c *Client) EnsureAllowance(ctx context.Context, token common.Address, required *big.Int) error {
	if required == nil || required.Sign() < 0 {
		return fmt.Errorf("required amount must be non-negative")
	}

	contract := c.token(token)

	var out []interface{}
	if err := contract.Call(c.callOpts(ctx), &out, "allowance", c.owner, c.adapterAddr); err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}
	if len(out) != 1 {
		return fmt.Errorf("unexpected allowance result length: %d", len(out))
	}
	current, err := asBigInt(out[0])
	if err != nil {
		return fmt.Errorf("allowance: %w", err)
	}

	if current.Cmp(required) >= 0 {
		c.logger.Debug("allowance sufficient",
			zap.String("token", token.Hex()),
			zap.String("current", current.String()),
			zap.String("required", required.String()),
		)
		return nil
	}

	c.logger.Info("raising allowance",
		zap.String("token", token.Hex()),
		zap.String("current", current.String()),
		zap.String("required", required.String()),
	)

	if _, err := c.transactAndWait(ctx, contract, "approve", c.adapterAddr, required); err != nil {
		return fmt.Errorf("%w: token %s: %v", ErrApprovalFailed, token.Hex(), err)
	}

	return nil
}
