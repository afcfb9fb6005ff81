package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairpulse/internal/aggregate"
	"pairpulse/internal/chain"
	"pairpulse/internal/config"
	"pairpulse/internal/indexer"
	"pairpulse/internal/publish"
	"pairpulse/internal/storage"
	"pairpulse/internal/storage/postgres"
)

const aggregateStateName = "pair_stats_aggregate"

func newAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate adapter events into per-pair statistics",
		RunE:  runAggregate,
	}

	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("adapter", "", "adapter contract address")
	cmd.Flags().Uint64("from", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	cmd.Flags().String("in", "", "aggregate from an archived logs JSONL instead of the chain")
	cmd.Flags().String("errors", "", "optional JSONL file for decode failures")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for pair statistics")
	cmd.Flags().String("state-file", "./data/aggregate_state.json", "local state file used when no Postgres DSN is set")
	cmd.Flags().String("nats-url", "", "NATS URL for publishing updated pair statistics")
	cmd.Flags().String("nats-subject", "pairs.stats", "NATS subject prefix")
	cmd.Flags().String("metrics-addr", "", "address to serve Prometheus metrics on (e.g. :9090)")
	cmd.Flags().String("base-token", "", "base token address")
	cmd.Flags().String("quote-token", "", "quote token address")
	cmd.Flags().String("base-symbol", "WETH", "base token symbol")
	cmd.Flags().String("quote-symbol", "USDC", "quote token symbol")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadAggregate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	adapterAddr, err := parseAddress(cfg.AdapterAddress, "adapter")
	if err != nil {
		return err
	}
	base, err := parseAddress(cfg.BaseToken, "base-token")
	if err != nil {
		return err
	}
	quote, err := parseAddress(cfg.QuoteToken, "quote-token")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		statsStore aggregate.StatsStore
		stateStore aggregate.StateStore
	)
	if cfg.PGDSN != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		statsStore = pgStore
		stateStore = &aggregate.DBStateStore{Store: pgStore, Name: aggregateStateName}
	} else {
		statsStore = aggregate.NewMemoryStore()
		stateStore = &aggregate.FileStateStore{Path: cfg.StateFile}
		logger.Warn("no pg-dsn set, aggregating into memory only")
	}

	pairs := aggregate.NewPairResolver(base, quote, cfg.BaseSymbol, cfg.QuoteSymbol)
	agg := aggregate.NewAggregator(statsStore, pairs, logger)

	if cfg.NATSURL != "" {
		publisher, err := publish.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		agg.SetPublisher(publisher)
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server", zap.Error(err))
			}
		}()
		defer server.Close()
	}

	feedCfg := indexer.FeedConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		AdapterAddr:  adapterAddr,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		StateStore:   stateStore,
	}

	errorsPath, _ := cmd.Flags().GetString("errors")

	if cfg.Input != "" {
		feed, err := indexer.NewFeed(feedCfg, nil, agg, logger)
		if err != nil {
			return err
		}
		if errorsPath != "" {
			feed.SetErrorLog(storage.NewDecodeErrorLog(errorsPath))
		}
		return feed.Replay(ctx, cfg.Input)
	}

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required when no input file is given")
	}
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	feed, err := indexer.NewFeed(feedCfg, chainClient, agg, logger)
	if err != nil {
		return err
	}
	if errorsPath != "" {
		feed.SetErrorLog(storage.NewDecodeErrorLog(errorsPath))
	}
	return feed.Run(ctx)
}
