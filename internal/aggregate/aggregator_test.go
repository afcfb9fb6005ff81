package aggregate

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"pairpulse/internal/model"
)

var (
	wethAddr  = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
	usdcAddr  = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	otherAddr = common.HexToAddress("0x0000000000000000000000000000000000000AAA")
	thirdAddr = common.HexToAddress("0x0000000000000000000000000000000000000BBB")
)

func newTestAggregator() (*Aggregator, *MemoryStore) {
	store := NewMemoryStore()
	pairs := NewPairResolver(wethAddr, usdcAddr, "WETH", "USDC")
	return NewAggregator(store, pairs, nil), store
}

func TestPairIDFixedLabel(t *testing.T) {
	pairs := NewPairResolver(wethAddr, usdcAddr, "WETH", "USDC")

	if got := pairs.PairID(wethAddr, usdcAddr); got != "WETH-USDC" {
		t.Fatalf("PairID(base, quote) = %q, want WETH-USDC", got)
	}
	if got := pairs.PairID(usdcAddr, wethAddr); got != "WETH-USDC" {
		t.Fatalf("PairID(quote, base) = %q, want WETH-USDC", got)
	}
}

func TestPairIDFallbackSymmetric(t *testing.T) {
	pairs := NewPairResolver(wethAddr, usdcAddr, "WETH", "USDC")

	forward := pairs.PairID(otherAddr, thirdAddr)
	backward := pairs.PairID(thirdAddr, otherAddr)
	if forward != backward {
		t.Fatalf("fallback pair id not symmetric: %q vs %q", forward, backward)
	}
	if forward == "WETH-USDC" {
		t.Fatalf("unrelated pair must not resolve to the primary label")
	}
}

func TestLoadOrInitIdempotent(t *testing.T) {
	agg, _ := newTestAggregator()
	ctx := context.Background()

	first, err := agg.loadOrInit(ctx, "WETH-USDC", 3000)
	if err != nil {
		t.Fatalf("loadOrInit failed: %v", err)
	}
	second, err := agg.loadOrInit(ctx, "WETH-USDC", 3000)
	if err != nil {
		t.Fatalf("loadOrInit failed: %v", err)
	}

	if first.TotalLiquidityAdded.Sign() != 0 || second.TotalLiquidityAdded.Sign() != 0 {
		t.Fatalf("fresh records must be zeroed")
	}
	if first.Fee != 3000 || second.Fee != 3000 {
		t.Fatalf("fee = %d/%d, want 3000", first.Fee, second.Fee)
	}
}

func TestFeeFirstSeenWins(t *testing.T) {
	agg, store := newTestAggregator()
	ctx := context.Background()

	added := model.LiquidityAddedEvent{
		TokenID: big.NewInt(1),
		TokenA:  wethAddr, TokenB: usdcAddr, Fee: 3000,
		AmountA: big.NewInt(1), AmountB: big.NewInt(1),
	}
	if err := agg.HandleLiquidityAdded(ctx, added); err != nil {
		t.Fatalf("HandleLiquidityAdded failed: %v", err)
	}

	swap := model.TokensSwappedEvent{
		TokenIn: wethAddr, TokenOut: usdcAddr, Fee: 500,
		AmountIn: big.NewInt(1), AmountOut: big.NewInt(1),
	}
	if err := agg.HandleTokensSwapped(ctx, swap); err != nil {
		t.Fatalf("HandleTokensSwapped failed: %v", err)
	}

	stats, ok, err := store.GetPairStats(ctx, "WETH-USDC")
	if err != nil || !ok {
		t.Fatalf("expected pair record: ok=%v err=%v", ok, err)
	}
	if stats.Fee != 3000 {
		t.Fatalf("fee = %d, want first-seen 3000", stats.Fee)
	}
}

func TestLiquidityCountersAccumulate(t *testing.T) {
	agg, store := newTestAggregator()
	ctx := context.Background()

	amounts := [][2]int64{{5, 12}, {100, 200}, {1, 0}}
	var want int64
	for i, pair := range amounts {
		want += pair[0] + pair[1]
		event := model.LiquidityAddedEvent{
			TokenID: big.NewInt(int64(i + 1)),
			TokenA:  wethAddr, TokenB: usdcAddr, Fee: 3000,
			AmountA: big.NewInt(pair[0]), AmountB: big.NewInt(pair[1]),
		}
		if err := agg.HandleLiquidityAdded(ctx, event); err != nil {
			t.Fatalf("HandleLiquidityAdded failed: %v", err)
		}
	}

	removed := model.LiquidityRemovedEvent{
		TokenID: big.NewInt(1),
		TokenA:  wethAddr, TokenB: usdcAddr, Fee: 3000,
		Amount0: big.NewInt(3), Amount1: big.NewInt(4),
	}
	if err := agg.HandleLiquidityRemoved(ctx, removed); err != nil {
		t.Fatalf("HandleLiquidityRemoved failed: %v", err)
	}

	stats, _, err := store.GetPairStats(ctx, "WETH-USDC")
	if err != nil {
		t.Fatalf("GetPairStats failed: %v", err)
	}
	if stats.TotalLiquidityAdded.Cmp(big.NewInt(want)) != 0 {
		t.Fatalf("totalLiquidityAdded = %s, want %d", stats.TotalLiquidityAdded, want)
	}
	if stats.TotalLiquidityRemoved.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("totalLiquidityRemoved = %s, want 7", stats.TotalLiquidityRemoved)
	}
}

func TestSwapCounterQuoteSideOnly(t *testing.T) {
	agg, store := newTestAggregator()
	ctx := context.Background()

	out := model.TokensSwappedEvent{
		TokenIn: wethAddr, TokenOut: usdcAddr, Fee: 3000,
		AmountIn: big.NewInt(1_000_000), AmountOut: big.NewInt(500),
	}
	if err := agg.HandleTokensSwapped(ctx, out); err != nil {
		t.Fatalf("HandleTokensSwapped failed: %v", err)
	}

	in := model.TokensSwappedEvent{
		TokenIn: usdcAddr, TokenOut: wethAddr, Fee: 3000,
		AmountIn: big.NewInt(200), AmountOut: big.NewInt(7),
	}
	if err := agg.HandleTokensSwapped(ctx, in); err != nil {
		t.Fatalf("HandleTokensSwapped failed: %v", err)
	}

	stats, _, err := store.GetPairStats(ctx, "WETH-USDC")
	if err != nil {
		t.Fatalf("GetPairStats failed: %v", err)
	}
	if stats.TotalSwappedQuote.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("totalSwappedQuote = %s, want 700", stats.TotalSwappedQuote)
	}
}

func TestSwapBetweenUnrelatedTokens(t *testing.T) {
	agg, store := newTestAggregator()
	ctx := context.Background()

	event := model.TokensSwappedEvent{
		TokenIn: otherAddr, TokenOut: thirdAddr, Fee: 10000,
		AmountIn: big.NewInt(100), AmountOut: big.NewInt(90),
	}
	if err := agg.HandleTokensSwapped(ctx, event); err != nil {
		t.Fatalf("HandleTokensSwapped failed: %v", err)
	}

	pairID := agg.pairs.PairID(otherAddr, thirdAddr)
	stats, ok, err := store.GetPairStats(ctx, pairID)
	if err != nil || !ok {
		t.Fatalf("record must still be initialized: ok=%v err=%v", ok, err)
	}
	if stats.TotalSwappedQuote.Sign() != 0 {
		t.Fatalf("totalSwappedQuote = %s, want 0 for a non-quote swap", stats.TotalSwappedQuote)
	}
	if stats.Fee != 10000 {
		t.Fatalf("fee = %d, want 10000", stats.Fee)
	}
}

type recordingPublisher struct {
	published []model.PairStats
	err       error
}

func (p *recordingPublisher) PublishPairStats(_ context.Context, stats model.PairStats) error {
	p.published = append(p.published, stats)
	return p.err
}

func TestPublisherBestEffort(t *testing.T) {
	agg, store := newTestAggregator()
	pub := &recordingPublisher{err: errors.New("nats down")}
	agg.SetPublisher(pub)
	ctx := context.Background()

	event := model.LiquidityAddedEvent{
		TokenID: big.NewInt(1),
		TokenA:  wethAddr, TokenB: usdcAddr, Fee: 3000,
		AmountA: big.NewInt(5), AmountB: big.NewInt(6),
	}
	if err := agg.HandleLiquidityAdded(ctx, event); err != nil {
		t.Fatalf("publish failure must not fail the handler: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(pub.published))
	}
	if _, ok, _ := store.GetPairStats(ctx, "WETH-USDC"); !ok {
		t.Fatalf("record must be persisted before publishing")
	}
}
