package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pairpulse/internal/adapter"
	"pairpulse/internal/units"
)

func newAddLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity <base-amount> <quote-amount>",
		Short: "Open a full-range position with both tokens",
		Args:  cobra.ExactArgs(2),
		RunE:  runAddLiquidity,
	}

	walletFlags(cmd.Flags())
	cmd.Flags().Int32("tick-lower", adapter.FullRangeTickLower, "lower tick of the position")
	cmd.Flags().Int32("tick-upper", adapter.FullRangeTickUpper, "upper tick of the position")

	return cmd
}

func runAddLiquidity(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newWalletEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	amountBase, err := units.Parse(args[0], env.cfg.BaseDecimals)
	if err != nil {
		return fmt.Errorf("%s amount: %w", env.cfg.BaseSymbol, err)
	}
	amountQuote, err := units.Parse(args[1], env.cfg.QuoteDecimals)
	if err != nil {
		return fmt.Errorf("%s amount: %w", env.cfg.QuoteSymbol, err)
	}

	tickLower, _ := cmd.Flags().GetInt32("tick-lower")
	tickUpper, _ := cmd.Flags().GetInt32("tick-upper")

	result, err := env.client.AddLiquidity(ctx,
		env.base, env.quote, env.cfg.Fee,
		amountBase.Value, amountQuote.Value,
		tickLower, tickUpper,
	)
	if errors.Is(err, adapter.ErrPositionIDNotFound) {
		// The position exists on-chain; only the id extraction failed.
		fmt.Printf("position opened, id unknown: tx %s\n", result.Receipt.TxHash.Hex())
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("position %s opened: %s %s + %s %s, tx %s\n",
		result.TokenID,
		amountBase.String(), env.cfg.BaseSymbol,
		amountQuote.String(), env.cfg.QuoteSymbol,
		result.Receipt.TxHash.Hex(),
	)
	return nil
}
