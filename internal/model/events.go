package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// LiquidityAddedEvent is the decoded adapter LiquidityAdded payload.
type LiquidityAddedEvent struct {
	TokenID   *big.Int
	TokenA    common.Address
	TokenB    common.Address
	Fee       uint32
	AmountA   *big.Int
	AmountB   *big.Int
	TickLower int32
	TickUpper int32
}

// LiquidityRemovedEvent is the decoded adapter LiquidityRemoved payload.
type LiquidityRemovedEvent struct {
	TokenID *big.Int
	TokenA  common.Address
	TokenB  common.Address
	Fee     uint32
	Amount0 *big.Int
	Amount1 *big.Int
}

// TokensSwappedEvent is the decoded adapter TokensSwapped payload.
type TokensSwappedEvent struct {
	TokenIn   common.Address
	TokenOut  common.Address
	Fee       uint32
	AmountIn  *big.Int
	AmountOut *big.Int
}
