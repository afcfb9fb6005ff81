package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pairpulse/internal/adapter"
	"pairpulse/internal/units"
)

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap <amount>",
		Short: "Swap with a 1% slippage guard derived from a fresh quote",
		Args:  cobra.ExactArgs(1),
		RunE:  runSwap,
	}

	walletFlags(cmd.Flags())
	cmd.Flags().Bool("reverse", false, "sell the quote asset for the base asset")
	cmd.Flags().Bool("unguarded", false, "skip the quote and send with minOut=0")

	return cmd
}

func runSwap(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newWalletEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	reverse, _ := cmd.Flags().GetBool("reverse")
	unguarded, _ := cmd.Flags().GetBool("unguarded")
	tokenIn, tokenOut, inDecimals, outDecimals, inSymbol, outSymbol := env.direction(reverse)

	amountIn, err := units.Parse(args[0], inDecimals)
	if err != nil {
		return err
	}
	if amountIn.Value.Sign() == 0 {
		return fmt.Errorf("swap amount must be greater than zero")
	}

	var quote *big.Int
	if !unguarded {
		quote, err = env.client.Quote(ctx, tokenIn, tokenOut, env.cfg.Fee, amountIn.Value)
		if err != nil {
			return err
		}
		fmt.Printf("quoted %s %s, guarding at %s %s minimum\n",
			units.Format(quote, outDecimals), outSymbol,
			units.Format(adapter.MinOutFromQuote(quote), outDecimals), outSymbol,
		)
	}

	receipt, err := env.client.Swap(ctx, tokenIn, tokenOut, env.cfg.Fee, amountIn.Value, quote)
	if err != nil {
		return err
	}

	fmt.Printf("swapped %s %s -> %s: tx %s (block %s)\n",
		amountIn.String(), inSymbol, outSymbol,
		receipt.TxHash.Hex(), receipt.BlockNumber,
	)
	return nil
}
