package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pairpulse/internal/units"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <amount>",
		Short: "Quote a swap without sending a transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuote,
	}

	walletFlags(cmd.Flags())
	cmd.Flags().Bool("reverse", false, "quote selling the quote asset for the base asset")

	return cmd
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newWalletEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	reverse, _ := cmd.Flags().GetBool("reverse")
	tokenIn, tokenOut, inDecimals, outDecimals, inSymbol, outSymbol := env.direction(reverse)

	amountIn, err := units.Parse(args[0], inDecimals)
	if err != nil {
		return err
	}

	quote, err := env.client.Quote(ctx, tokenIn, tokenOut, env.cfg.Fee, amountIn.Value)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s -> %s %s (fee %d)\n",
		amountIn.String(), inSymbol,
		units.Format(quote, outDecimals), outSymbol,
		env.cfg.Fee,
	)
	return nil
}
