package model

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// PairStats is the persisted cumulative aggregate for a trading pair.
// Counters hold raw smallest-unit sums and never decrease.
type PairStats struct {
	PairID                string
	Fee                   uint32
	TotalLiquidityAdded   *big.Int
	TotalLiquidityRemoved *big.Int
	TotalSwappedQuote     *big.Int
}

// NewPairStats returns a zeroed record for a pair id with the fee taken from
// the first event seen for that pair.
func NewPairStats(pairID string, fee uint32) PairStats {
	return PairStats{
		PairID:                pairID,
		Fee:                   fee,
		TotalLiquidityAdded:   big.NewInt(0),
		TotalLiquidityRemoved: big.NewInt(0),
		TotalSwappedQuote:     big.NewInt(0),
	}
}

type pairStatsJSON struct {
	PairID                string `json:"pair_id"`
	Fee                   uint32 `json:"fee"`
	TotalLiquidityAdded   string `json:"total_liquidity_added"`
	TotalLiquidityRemoved string `json:"total_liquidity_removed"`
	TotalSwappedQuote     string `json:"total_swapped_quote"`
}

// MarshalJSON encodes counters as decimal strings so values above 2^53
// survive JSON consumers.
func (p PairStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(pairStatsJSON{
		PairID:                p.PairID,
		Fee:                   p.Fee,
		TotalLiquidityAdded:   bigIntString(p.TotalLiquidityAdded),
		TotalLiquidityRemoved: bigIntString(p.TotalLiquidityRemoved),
		TotalSwappedQuote:     bigIntString(p.TotalSwappedQuote),
	})
}

// UnmarshalJSON decodes the string counter form.
func (p *PairStats) UnmarshalJSON(data []byte) error {
	var raw pairStatsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	added, err := parseBigInt(raw.TotalLiquidityAdded)
	if err != nil {
		return fmt.Errorf("total_liquidity_added: %w", err)
	}
	removed, err := parseBigInt(raw.TotalLiquidityRemoved)
	if err != nil {
		return fmt.Errorf("total_liquidity_removed: %w", err)
	}
	swapped, err := parseBigInt(raw.TotalSwappedQuote)
	if err != nil {
		return fmt.Errorf("total_swapped_quote: %w", err)
	}

	p.PairID = raw.PairID
	p.Fee = raw.Fee
	p.TotalLiquidityAdded = added
	p.TotalLiquidityRemoved = removed
	p.TotalSwappedQuote = swapped
	return nil
}

func bigIntString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %s", value)
	}
	return parsed, nil
}
