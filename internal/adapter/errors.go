package adapter

import "errors"

// Failure taxonomy for adapter operations. State-changing failures abort the
// whole operation; nothing is retried.
var (
	// ErrApprovalFailed reports a failed or reverted approval transaction.
	ErrApprovalFailed = errors.New("approval failed")

	// ErrQuoteUnavailable reports a reverted quote call, typically because
	// no pool exists at the requested fee tier.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrSlippageExceeded reports a swap reverted by its minimum-output guard.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrPositionIDNotFound reports that a confirmed add-liquidity receipt
	// carried no parsable LiquidityAdded event. The position exists on-chain;
	// only its identifier is unknown.
	ErrPositionIDNotFound = errors.New("position id not found in receipt")

	// ErrInvalidPercentage reports a withdrawal percentage outside (0, 100].
	ErrInvalidPercentage = errors.New("percentage must be in (0, 100]")

	// ErrNothingToWithdraw reports a withdrawal rejected for a zero burn.
	ErrNothingToWithdraw = errors.New("nothing to withdraw")

	// ErrNotOwner reports that the signer does not own the position.
	ErrNotOwner = errors.New("signer is not the position owner")

	// ErrNotApproved reports that the adapter lacks operator approval for a
	// position and approval could not be granted.
	ErrNotApproved = errors.New("adapter is not approved for the position")

	// ErrCallReverted is the catch-all for reverted external calls.
	ErrCallReverted = errors.New("external call reverted")
)
