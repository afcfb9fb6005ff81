package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pairpulse/internal/units"
)

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw <token-id>",
		Short: "Withdraw a percentage of a position's liquidity",
		Args:  cobra.ExactArgs(1),
		RunE:  runWithdraw,
	}

	walletFlags(cmd.Flags())
	cmd.Flags().Float64("percent", 100, "percentage of current liquidity to burn (0, 100]")

	return cmd
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newWalletEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	tokenID, ok := new(big.Int).SetString(args[0], 10)
	if !ok {
		return fmt.Errorf("invalid token id: %q", args[0])
	}
	percent, _ := cmd.Flags().GetFloat64("percent")

	receipt, err := env.client.Withdraw(ctx, tokenID, percent)
	if err != nil {
		return err
	}

	fmt.Printf("withdrew %.0f%% of position %s: tx %s (block %s)\n",
		percent, tokenID, receipt.TxHash.Hex(), receipt.BlockNumber)
	return nil
}

func newBalancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the signer's base and quote token balances",
		RunE:  runBalances,
	}

	walletFlags(cmd.Flags())

	return cmd
}

func runBalances(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newWalletEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	baseBalance, err := env.client.TokenBalance(ctx, env.base)
	if err != nil {
		return fmt.Errorf("%s balance: %w", env.cfg.BaseSymbol, err)
	}
	quoteBalance, err := env.client.TokenBalance(ctx, env.quote)
	if err != nil {
		return fmt.Errorf("%s balance: %w", env.cfg.QuoteSymbol, err)
	}

	fmt.Printf("%s: %s\n", env.cfg.BaseSymbol, units.Format(baseBalance, env.cfg.BaseDecimals))
	fmt.Printf("%s: %s\n", env.cfg.QuoteSymbol, units.Format(quoteBalance, env.cfg.QuoteDecimals))
	fmt.Printf("owner: %s\n", env.client.Owner().Hex())
	return nil
}
