package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PAIRPULSE"

// newViper builds a viper instance merging config file, environment
// variables, and flags.
func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// AdapterConfig holds configuration for the wallet-facing commands.
type AdapterConfig struct {
	RPCURL          string
	PrivateKey      string
	AdapterAddress  string
	PositionManager string
	BaseToken       string
	QuoteToken      string
	BaseSymbol      string
	QuoteSymbol     string
	BaseDecimals    uint8
	QuoteDecimals   uint8
	Fee             uint32
	LogLevel        string
}

// LoadAdapter merges config file, environment variables, and flags into
// AdapterConfig.
func LoadAdapter(cfgFile string, flags *pflag.FlagSet) (AdapterConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return AdapterConfig{}, err
	}

	v.SetDefault("base-symbol", "WETH")
	v.SetDefault("quote-symbol", "USDC")
	v.SetDefault("base-decimals", 18)
	v.SetDefault("quote-decimals", 6)
	v.SetDefault("fee", 3000)
	v.SetDefault("log-level", "info")

	cfg := AdapterConfig{
		RPCURL:          v.GetString("rpc"),
		PrivateKey:      v.GetString("private-key"),
		AdapterAddress:  v.GetString("adapter"),
		PositionManager: v.GetString("position-manager"),
		BaseToken:       v.GetString("base-token"),
		QuoteToken:      v.GetString("quote-token"),
		BaseSymbol:      v.GetString("base-symbol"),
		QuoteSymbol:     v.GetString("quote-symbol"),
		BaseDecimals:    uint8(v.GetUint("base-decimals")),
		QuoteDecimals:   uint8(v.GetUint("quote-decimals")),
		Fee:             uint32(v.GetUint32("fee")),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

// IndexConfig holds configuration for the raw-log archive command.
type IndexConfig struct {
	RPCURL            string
	FromBlock         uint64
	ToBlock           uint64
	AdapterAddress    string
	BatchSize         uint64
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// LoadIndex merges config file, environment variables, and flags into
// IndexConfig.
func LoadIndex(cfgFile string, flags *pflag.FlagSet) (IndexConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return IndexConfig{}, err
	}

	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("out", "./data/logs.jsonl")
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := IndexConfig{
		RPCURL:            v.GetString("rpc"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		AdapterAddress:    v.GetString("adapter"),
		BatchSize:         v.GetUint64("batch-size"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}
