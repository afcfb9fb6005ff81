package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Values from .env are only fallbacks; real env and flags win.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "pairpulse",
		Short:        "WETH/USDC adapter client and pair statistics indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newQuoteCmd())
	root.AddCommand(newSwapCmd())
	root.AddCommand(newAddLiquidityCmd())
	root.AddCommand(newWithdrawCmd())
	root.AddCommand(newBalancesCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newAggregateCmd())
	root.AddCommand(newStatsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
