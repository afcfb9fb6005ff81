package aggregate

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"pairpulse/internal/model"
)

// Publisher pushes updated pair statistics to downstream consumers.
// Publishing is best-effort: a publish failure never fails the handler.
type Publisher interface {
	PublishPairStats(ctx context.Context, stats model.PairStats) error
}

// Aggregator consumes adapter events and maintains cumulative per-pair
// counters. Handlers must be invoked in log delivery order; each handler is
// a load-mutate-save cycle against the store.
type Aggregator struct {
	store     StatsStore
	pairs     *PairResolver
	publisher Publisher
	logger    *zap.Logger
}

func NewAggregator(store StatsStore, pairs *PairResolver, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:  store,
		pairs:  pairs,
		logger: logger,
	}
}

// SetPublisher attaches an optional downstream publisher.
func (a *Aggregator) SetPublisher(p Publisher) {
	a.publisher = p
}

// loadOrInit returns the existing record for a pair id or creates a zeroed
// one with the fee from the triggering event. The fee of an existing record
// is never overwritten: first-seen fee wins.
func (a *Aggregator) loadOrInit(ctx context.Context, pairID string, fee uint32) (model.PairStats, error) {
	stats, ok, err := a.store.GetPairStats(ctx, pairID)
	if err != nil {
		return model.PairStats{}, fmt.Errorf("load pair %s: %w", pairID, err)
	}
	if ok {
		return stats, nil
	}
	return model.NewPairStats(pairID, fee), nil
}

// HandleLiquidityAdded adds both raw amounts to the pair's liquidity-added
// counter. Amounts are summed in their native smallest units even when the
// two tokens carry different decimal scales.
func (a *Aggregator) HandleLiquidityAdded(ctx context.Context, ev model.LiquidityAddedEvent) error {
	pairID := a.pairs.PairID(ev.TokenA, ev.TokenB)
	stats, err := a.loadOrInit(ctx, pairID, ev.Fee)
	if err != nil {
		return err
	}

	stats.TotalLiquidityAdded = addAmounts(stats.TotalLiquidityAdded, ev.AmountA, ev.AmountB)
	return a.save(ctx, stats, "liquidity_added")
}

// HandleLiquidityRemoved adds both raw amounts to the pair's
// liquidity-removed counter.
func (a *Aggregator) HandleLiquidityRemoved(ctx context.Context, ev model.LiquidityRemovedEvent) error {
	pairID := a.pairs.PairID(ev.TokenA, ev.TokenB)
	stats, err := a.loadOrInit(ctx, pairID, ev.Fee)
	if err != nil {
		return err
	}

	stats.TotalLiquidityRemoved = addAmounts(stats.TotalLiquidityRemoved, ev.Amount0, ev.Amount1)
	return a.save(ctx, stats, "liquidity_removed")
}

// HandleTokensSwapped increments the quote-asset volume counter by the side
// of the swap denominated in the quote asset. A swap touching neither side
// leaves the counter unchanged but still initializes the pair record.
func (a *Aggregator) HandleTokensSwapped(ctx context.Context, ev model.TokensSwappedEvent) error {
	pairID := a.pairs.PairID(ev.TokenIn, ev.TokenOut)
	stats, err := a.loadOrInit(ctx, pairID, ev.Fee)
	if err != nil {
		return err
	}

	quote := a.pairs.QuoteAsset()
	switch {
	case ev.TokenOut == quote:
		stats.TotalSwappedQuote = addAmounts(stats.TotalSwappedQuote, ev.AmountOut)
	case ev.TokenIn == quote:
		stats.TotalSwappedQuote = addAmounts(stats.TotalSwappedQuote, ev.AmountIn)
	}
	return a.save(ctx, stats, "tokens_swapped")
}

func (a *Aggregator) save(ctx context.Context, stats model.PairStats, event string) error {
	if err := a.store.PutPairStats(ctx, stats); err != nil {
		return fmt.Errorf("save pair %s: %w", stats.PairID, err)
	}

	a.logger.Debug("pair stats updated",
		zap.String("pair_id", stats.PairID),
		zap.String("event", event),
	)

	if a.publisher != nil {
		if err := a.publisher.PublishPairStats(ctx, stats); err != nil {
			a.logger.Warn("publish pair stats",
				zap.String("pair_id", stats.PairID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func addAmounts(counter *big.Int, amounts ...*big.Int) *big.Int {
	sum := new(big.Int)
	if counter != nil {
		sum.Set(counter)
	}
	for _, amount := range amounts {
		if amount != nil {
			sum.Add(sum, amount)
		}
	}
	return sum
}
