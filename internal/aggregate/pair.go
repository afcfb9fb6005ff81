package aggregate

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// PairResolver canonicalizes a token pair to a stable aggregation key.
// The configured primary pair always maps to its symbolic label regardless
// of argument order; any other pair falls back to a lexicographic ordering
// of the uppercased addresses.
type PairResolver struct {
	base  common.Address
	quote common.Address
	label string
}

func NewPairResolver(base, quote common.Address, baseSymbol, quoteSymbol string) *PairResolver {
	return &PairResolver{
		base:  base,
		quote: quote,
		label: baseSymbol + "-" + quoteSymbol,
	}
}

// QuoteAsset returns the address whose swapped volume is tracked.
func (r *PairResolver) QuoteAsset() common.Address {
	return r.quote
}

// PairID derives the canonical pair id for two token addresses.
func (r *PairResolver) PairID(a, b common.Address) string {
	if (a == r.base && b == r.quote) || (a == r.quote && b == r.base) {
		return r.label
	}

	first := strings.ToUpper(a.Hex())
	second := strings.ToUpper(b.Hex())
	if first > second {
		first, second = second, first
	}
	return first + "-" + second
}
