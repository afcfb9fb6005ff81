package indexer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"pairpulse/internal/adapter"
	"pairpulse/internal/aggregate"
	"pairpulse/internal/chain"
	"pairpulse/internal/model"
	"pairpulse/internal/storage"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// FeedConfig holds runtime settings for the aggregation feed.
type FeedConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	AdapterAddr  common.Address
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	StateStore   aggregate.StateStore
}

// Feed streams adapter logs, decodes them, and drives the aggregator.
// Events are dispatched strictly in log delivery order.
type Feed struct {
	cfg     FeedConfig
	chain   *chain.Client
	decoder *adapter.EventDecoder
	agg     *aggregate.Aggregator
	errLog  *storage.DecodeErrorLog
	logger  *zap.Logger
}

func NewFeed(cfg FeedConfig, chainClient *chain.Client, agg *aggregate.Aggregator, logger *zap.Logger) (*Feed, error) {
	if agg == nil {
		return nil, fmt.Errorf("aggregator is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := adapter.NewEventDecoder()
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	return &Feed{
		cfg:     cfg,
		chain:   chainClient,
		decoder: decoder,
		agg:     agg,
		logger:  logger,
	}, nil
}

// Run fetches adapter logs from the chain over the configured block range
// and aggregates them batch by batch, checkpointing after each batch.
func (f *Feed) Run(ctx context.Context) error {
	if f.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if f.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if f.cfg.AdapterAddr == (common.Address{}) {
		return fmt.Errorf("adapter address is required")
	}

	from := f.cfg.FromBlock
	to := f.cfg.ToBlock
	if to == 0 {
		latest, err := f.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if f.cfg.StateStore != nil {
		last, ok, err := f.cfg.StateStore.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			f.logger.Info("resume from state", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		f.logger.Info("nothing to aggregate", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, f.cfg.BatchSize)
	if err != nil {
		return err
	}

	addresses := []common.Address{f.cfg.AdapterAddr}
	topics := f.decoder.Topics()

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var logs []types.Log
		err := withRetry(ctx, f.cfg.MaxRetries, f.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			logs, err = f.chain.FilterLogs(ctx, blockRange.From, blockRange.To, addresses, topics)
			if err != nil {
				f.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		logsFetched.Add(float64(len(logs)))

		for _, log := range logs {
			if err := f.dispatch(ctx, log); err != nil {
				return err
			}
		}

		if f.cfg.StateStore != nil {
			if err := f.cfg.StateStore.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		f.logger.Info("batch aggregated",
			zap.Int("logs", len(logs)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

// Replay aggregates archived log records from a JSONL file in file order.
func (f *Feed) Replay(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, failed int
	var maxBlock uint64

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.LogRecord
		if err := jsonCodec.Unmarshal(line, &record); err != nil {
			failed++
			f.logger.Warn("decode log record", zap.Error(err))
			continue
		}

		log, err := recordToLog(record)
		if err != nil {
			failed++
			f.logger.Warn("rebuild log", zap.Error(err), zap.String("tx_hash", record.TxHash))
			continue
		}

		if err := f.dispatch(ctx, log); err != nil {
			return err
		}
		if record.BlockNumber > maxBlock {
			maxBlock = record.BlockNumber
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	if f.cfg.StateStore != nil && maxBlock > 0 {
		if err := f.cfg.StateStore.Save(ctx, maxBlock); err != nil {
			return err
		}
	}

	f.logger.Info("replay complete", zap.Int("total", total), zap.Int("failed", failed))
	return nil
}

// dispatch routes one log to its aggregator handler. Logs that are not
// adapter events, or that fail to decode, are skipped as expected noise.
func (f *Feed) dispatch(ctx context.Context, log types.Log) error {
	if log.Removed || len(log.Topics) == 0 {
		return nil
	}

	name, ok := f.decoder.EventName(log.Topics[0])
	if !ok {
		return nil
	}

	switch name {
	case adapter.EventLiquidityAdded:
		ev, err := f.decoder.DecodeLiquidityAdded(log)
		if err != nil {
			f.skip(name, log, err)
			return nil
		}
		eventsAggregated.WithLabelValues(name).Inc()
		return f.agg.HandleLiquidityAdded(ctx, ev)
	case adapter.EventLiquidityRemoved:
		ev, err := f.decoder.DecodeLiquidityRemoved(log)
		if err != nil {
			f.skip(name, log, err)
			return nil
		}
		eventsAggregated.WithLabelValues(name).Inc()
		return f.agg.HandleLiquidityRemoved(ctx, ev)
	case adapter.EventTokensSwapped:
		ev, err := f.decoder.DecodeTokensSwapped(log)
		if err != nil {
			f.skip(name, log, err)
			return nil
		}
		eventsAggregated.WithLabelValues(name).Inc()
		return f.agg.HandleTokensSwapped(ctx, ev)
	}
	return nil
}

// SetErrorLog attaches an optional JSONL sink for decode failures.
func (f *Feed) SetErrorLog(errLog *storage.DecodeErrorLog) {
	f.errLog = errLog
}

func (f *Feed) skip(name string, log types.Log, err error) {
	decodeFailures.WithLabelValues(name).Inc()
	f.logger.Warn("skip undecodable event",
		zap.String("event", name),
		zap.String("tx_hash", log.TxHash.Hex()),
		zap.Error(err),
	)

	if f.errLog == nil {
		return
	}
	record := model.DecodeError{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topic0:      log.Topics[0].Hex(),
		Error:       err.Error(),
	}
	if err := f.errLog.Append(record); err != nil {
		f.logger.Warn("write decode error", zap.Error(err))
	}
}
