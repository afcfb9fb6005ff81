package adapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"pairpulse/internal/chain"
)

// boundContract is the slice of bind.BoundContract the client uses.
type boundContract interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

type waitFunc func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

// Client drives the adapter, token, and position-manager contracts on behalf
// of a single signer. Operations are sequential: each external call is
// awaited to full confirmation before the next one is issued.
type Client struct {
	adapterAddr common.Address
	pmAddr      common.Address
	owner       common.Address

	auth    *bind.TransactOpts
	adapter boundContract
	pm      boundContract
	token   func(common.Address) boundContract
	wait    waitFunc
	logger  *zap.Logger

	decimals *decimalsCache
}

// NewClient binds the adapter and position-manager contracts and prepares a
// keyed transactor for the signer behind privateKeyHex.
func NewClient(
	ctx context.Context,
	chainClient *chain.Client,
	privateKeyHex string,
	adapterAddr common.Address,
	pmAddr common.Address,
	logger *zap.Logger,
) (*Client, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("create transactor: %w", err)
	}

	adapterParsed, err := AdapterABI()
	if err != nil {
		return nil, fmt.Errorf("parse adapter abi: %w", err)
	}
	pmParsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	erc20Parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	backend := chainClient.Eth()

	return &Client{
		adapterAddr: adapterAddr,
		pmAddr:      pmAddr,
		owner:       crypto.PubkeyToAddress(key.PublicKey),
		auth:        auth,
		adapter:     bind.NewBoundContract(adapterAddr, adapterParsed, backend, backend, backend),
		pm:          bind.NewBoundContract(pmAddr, pmParsed, backend, backend, backend),
		token: func(addr common.Address) boundContract {
			return bind.NewBoundContract(addr, erc20Parsed, backend, backend, backend)
		},
		wait:     chainClient.WaitMined,
		logger:   logger,
		decimals: newDecimalsCache(),
	}, nil
}

// Owner returns the signer address.
func (c *Client) Owner() common.Address {
	return c.owner
}

// AdapterAddress returns the adapter contract address.
func (c *Client) AdapterAddress() common.Address {
	return c.adapterAddr
}

func (c *Client) txOpts(ctx context.Context) *bind.TransactOpts {
	opts := *c.auth
	opts.Context = ctx
	return &opts
}

func (c *Client) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: c.owner}
}

// transactAndWait submits a transaction and blocks until it is mined.
// A mined-but-reverted transaction is returned with ErrCallReverted.
func (c *Client) transactAndWait(ctx context.Context, contract boundContract, method string, params ...interface{}) (*types.Receipt, error) {
	tx, err := contract.Transact(c.txOpts(ctx), method, params...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCallReverted, method, err)
	}

	c.logger.Info("transaction sent", zap.String("method", method), zap.String("tx_hash", tx.Hash().Hex()))

	receipt, err := c.wait(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("wait %s: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s: tx %s", ErrCallReverted, method, tx.Hash().Hex())
	}

	c.logger.Info("transaction mined",
		zap.String("method", method),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint64("block_number", receipt.BlockNumber.Uint64()),
		zap.Uint64("gas_used", receipt.GasUsed),
	)

	return receipt, nil
}

// TokenDecimals reads the decimals exponent of a token. Results are cached
// for the lifetime of the client.
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	if decimals, ok := c.decimals.get(token); ok {
		return decimals, nil
	}

	var out []interface{}
	if err := c.token(token).Call(c.callOpts(ctx), &out, "decimals"); err != nil {
		return 0, fmt.Errorf("call decimals: %w", err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("unexpected decimals result length: %d", len(out))
	}
	decimals, err := asUint8(out[0])
	if err != nil {
		return 0, err
	}
	c.decimals.set(token, decimals)
	return decimals, nil
}

// TokenBalance reads the signer's balance of a token.
func (c *Client) TokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.token(token).Call(c.callOpts(ctx), &out, "balanceOf", c.owner); err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf result length: %d", len(out))
	}
	return asBigInt(out[0])
}

// feeArg widens a uint24 fee tier for ABI packing.
func feeArg(fee uint32) *big.Int {
	return new(big.Int).SetUint64(uint64(fee))
}

// tickArg widens an int24 tick for ABI packing.
func tickArg(tick int32) *big.Int {
	return big.NewInt(int64(tick))
}
