package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pairpulse/internal/storage/postgres"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <pair-id>",
		Short: "Print the persisted statistics for a pair",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	cmd.Flags().String("pg-dsn", "", "Postgres DSN for pair statistics")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	dsn, err := statsDSN(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	stats, ok, err := store.GetPairStats(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pair %q not found", args[0])
	}

	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}

func statsDSN(flags *pflag.FlagSet) (string, error) {
	v := viper.New()
	v.SetEnvPrefix("PAIRPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return "", err
	}

	dsn := v.GetString("pg-dsn")
	if dsn == "" {
		return "", fmt.Errorf("pg-dsn is required")
	}
	return dsn, nil
}
