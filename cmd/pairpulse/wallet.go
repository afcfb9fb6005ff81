package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"pairpulse/internal/adapter"
	"pairpulse/internal/chain"
	"pairpulse/internal/config"
)

// walletFlags registers the flags shared by every wallet-facing command.
func walletFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "RPC URL")
	flags.String("private-key", "", "hex private key of the signer")
	flags.String("adapter", "", "adapter contract address")
	flags.String("position-manager", "", "position manager contract address")
	flags.String("base-token", "", "base token address (18 decimals)")
	flags.String("quote-token", "", "quote token address (6 decimals)")
	flags.String("base-symbol", "WETH", "base token symbol")
	flags.String("quote-symbol", "USDC", "quote token symbol")
	flags.Uint("base-decimals", 18, "base token decimals")
	flags.Uint("quote-decimals", 6, "quote token decimals")
	flags.Uint32("fee", 3000, "pool fee tier")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

// walletEnv bundles everything a wallet-facing command needs.
type walletEnv struct {
	cfg    config.AdapterConfig
	logger *zap.Logger
	chain  *chain.Client
	client *adapter.Client
	base   common.Address
	quote  common.Address
}

func (e *walletEnv) close() {
	if e.chain != nil {
		e.chain.Close()
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

func newWalletEnv(ctx context.Context, cmd *cobra.Command) (*walletEnv, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadAdapter(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key is required")
	}

	adapterAddr, err := parseAddress(cfg.AdapterAddress, "adapter")
	if err != nil {
		return nil, err
	}
	pmAddr, err := parseAddress(cfg.PositionManager, "position-manager")
	if err != nil {
		return nil, err
	}
	base, err := parseAddress(cfg.BaseToken, "base-token")
	if err != nil {
		return nil, err
	}
	quote, err := parseAddress(cfg.QuoteToken, "quote-token")
	if err != nil {
		return nil, err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	client, err := adapter.NewClient(ctx, chainClient, cfg.PrivateKey, adapterAddr, pmAddr, logger)
	if err != nil {
		chainClient.Close()
		return nil, err
	}

	return &walletEnv{
		cfg:    cfg,
		logger: logger,
		chain:  chainClient,
		client: client,
		base:   base,
		quote:  quote,
	}, nil
}

func parseAddress(input, name string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", name, input)
	}
	return common.HexToAddress(input), nil
}

// direction resolves the in/out tokens for quote and swap commands. The
// default direction sells the base asset for the quote asset.
func (e *walletEnv) direction(reverse bool) (tokenIn, tokenOut common.Address, inDecimals, outDecimals uint8, inSymbol, outSymbol string) {
	if reverse {
		return e.quote, e.base, e.cfg.QuoteDecimals, e.cfg.BaseDecimals, e.cfg.QuoteSymbol, e.cfg.BaseSymbol
	}
	return e.base, e.quote, e.cfg.BaseDecimals, e.cfg.QuoteDecimals, e.cfg.BaseSymbol, e.cfg.QuoteSymbol
}
