package indexer

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"pairpulse/internal/adapter"
	"pairpulse/internal/aggregate"
	"pairpulse/internal/model"
)

var (
	feedAdapterAddr = common.HexToAddress("0x00000000000000000000000000000000000000AD")
	feedWETHAddr    = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
	feedUSDCAddr    = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
)

func packEvent(t *testing.T, name string, indexed []common.Hash, values ...interface{}) types.Log {
	t.Helper()
	parsed, err := adapter.AdapterABI()
	if err != nil {
		t.Fatalf("parse ABI: %v", err)
	}
	event := parsed.Events[name]
	data, err := event.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		t.Fatalf("pack %s: %v", name, err)
	}
	return types.Log{
		Address: feedAdapterAddr,
		Topics:  append([]common.Hash{event.ID}, indexed...),
		Data:    data,
	}
}

func logToRecord(log types.Log, block uint64) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}
	return model.LogRecord{
		ChainID:     42161,
		BlockNumber: block,
		BlockHash:   common.HexToHash("0x01").Hex(),
		TxHash:      common.HexToHash("0x02").Hex(),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
	}
}

func writeJSONL(t *testing.T, records []model.LogRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create input: %v", err)
	}
	defer file.Close()
	for _, record := range records {
		line, err := jsonCodec.Marshal(record)
		if err != nil {
			t.Fatalf("marshal record: %v", err)
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			t.Fatalf("write record: %v", err)
		}
	}
	return path
}

func newTestFeed(t *testing.T, state aggregate.StateStore) (*Feed, *aggregate.MemoryStore) {
	t.Helper()
	store := aggregate.NewMemoryStore()
	pairs := aggregate.NewPairResolver(feedWETHAddr, feedUSDCAddr, "WETH", "USDC")
	agg := aggregate.NewAggregator(store, pairs, nil)

	feed, err := NewFeed(FeedConfig{
		AdapterAddr: feedAdapterAddr,
		BatchSize:   100,
		StateStore:  state,
	}, nil, agg, nil)
	if err != nil {
		t.Fatalf("NewFeed: %v", err)
	}
	return feed, store
}

func TestReplayAggregatesEvents(t *testing.T) {
	added := packEvent(t, adapter.EventLiquidityAdded,
		[]common.Hash{common.BigToHash(big.NewInt(1))},
		feedWETHAddr, feedUSDCAddr, big.NewInt(3000),
		big.NewInt(5), big.NewInt(12), big.NewInt(-887220), big.NewInt(887220))
	swapped := packEvent(t, adapter.EventTokensSwapped, nil,
		feedWETHAddr, feedUSDCAddr, big.NewInt(3000),
		big.NewInt(1000), big.NewInt(500))
	removed := packEvent(t, adapter.EventLiquidityRemoved,
		[]common.Hash{common.BigToHash(big.NewInt(1))},
		feedWETHAddr, feedUSDCAddr, big.NewInt(3000),
		big.NewInt(3), big.NewInt(4))

	path := writeJSONL(t, []model.LogRecord{
		logToRecord(added, 10),
		logToRecord(swapped, 11),
		logToRecord(removed, 12),
	})

	state := &aggregate.FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}
	feed, store := newTestFeed(t, state)

	if err := feed.Replay(context.Background(), path); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	stats, ok, err := store.GetPairStats(context.Background(), "WETH-USDC")
	if err != nil || !ok {
		t.Fatalf("expected pair record: ok=%v err=%v", ok, err)
	}
	if stats.TotalLiquidityAdded.Cmp(big.NewInt(17)) != 0 {
		t.Fatalf("totalLiquidityAdded = %s, want 17", stats.TotalLiquidityAdded)
	}
	if stats.TotalLiquidityRemoved.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("totalLiquidityRemoved = %s, want 7", stats.TotalLiquidityRemoved)
	}
	if stats.TotalSwappedQuote.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("totalSwappedQuote = %s, want 500", stats.TotalSwappedQuote)
	}

	block, found, err := state.Load(context.Background())
	if err != nil || !found {
		t.Fatalf("expected saved state: found=%v err=%v", found, err)
	}
	if block != 12 {
		t.Fatalf("state block = %d, want 12", block)
	}
}

func TestReplaySkipsBadLines(t *testing.T) {
	swapped := packEvent(t, adapter.EventTokensSwapped, nil,
		feedWETHAddr, feedUSDCAddr, big.NewInt(3000),
		big.NewInt(1000), big.NewInt(500))

	good := logToRecord(swapped, 10)
	truncated := good
	truncated.Data = "0x0102"

	path := writeJSONL(t, []model.LogRecord{truncated, good})

	feed, store := newTestFeed(t, nil)
	if err := feed.Replay(context.Background(), path); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	stats, ok, _ := store.GetPairStats(context.Background(), "WETH-USDC")
	if !ok {
		t.Fatalf("expected pair record from the good line")
	}
	if stats.TotalSwappedQuote.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("totalSwappedQuote = %s, want 500", stats.TotalSwappedQuote)
	}
}

func TestDispatchIgnoresForeignTopics(t *testing.T) {
	feed, store := newTestFeed(t, nil)

	foreign := types.Log{
		Address: feedAdapterAddr,
		Topics:  []common.Hash{common.HexToHash("0xdeadbeef")},
	}
	if err := feed.dispatch(context.Background(), foreign); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	removedLog := packEvent(t, adapter.EventTokensSwapped, nil,
		feedWETHAddr, feedUSDCAddr, big.NewInt(3000),
		big.NewInt(1), big.NewInt(1))
	removedLog.Removed = true
	if err := feed.dispatch(context.Background(), removedLog); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if _, ok, _ := store.GetPairStats(context.Background(), "WETH-USDC"); ok {
		t.Fatalf("no record should exist for ignored logs")
	}
}
