package config

import (
	"time"

	"github.com/spf13/pflag"
)

// AggregateConfig holds configuration for the aggregation feed.
type AggregateConfig struct {
	RPCURL         string
	AdapterAddress string
	FromBlock      uint64
	ToBlock        uint64
	BatchSize      uint64
	Input          string
	PGDSN          string
	StateFile      string
	NATSURL        string
	NATSSubject    string
	MetricsAddr    string
	BaseToken      string
	QuoteToken     string
	BaseSymbol     string
	QuoteSymbol    string
	MaxRetries     int
	RetryBackoff   time.Duration
	LogLevel       string
}

// LoadAggregate merges config file, environment variables, and flags into
// AggregateConfig.
func LoadAggregate(cfgFile string, flags *pflag.FlagSet) (AggregateConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return AggregateConfig{}, err
	}

	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("state-file", "./data/aggregate_state.json")
	v.SetDefault("nats-subject", "pairs.stats")
	v.SetDefault("base-symbol", "WETH")
	v.SetDefault("quote-symbol", "USDC")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := AggregateConfig{
		RPCURL:         v.GetString("rpc"),
		AdapterAddress: v.GetString("adapter"),
		FromBlock:      v.GetUint64("from"),
		ToBlock:        v.GetUint64("to"),
		BatchSize:      v.GetUint64("batch-size"),
		Input:          v.GetString("in"),
		PGDSN:          v.GetString("pg-dsn"),
		StateFile:      v.GetString("state-file"),
		NATSURL:        v.GetString("nats-url"),
		NATSSubject:    v.GetString("nats-subject"),
		MetricsAddr:    v.GetString("metrics-addr"),
		BaseToken:      v.GetString("base-token"),
		QuoteToken:     v.GetString("quote-token"),
		BaseSymbol:     v.GetString("base-symbol"),
		QuoteSymbol:    v.GetString("quote-symbol"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}
