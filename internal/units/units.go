package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmountFormat reports input that cannot be converted without loss.
var ErrInvalidAmountFormat = errors.New("invalid amount format")

// Amount is a token quantity in the token's smallest unit. The decimal
// exponent is fixed at construction and never changes.
type Amount struct {
	Value    *big.Int
	Decimals uint8
}

// Zero returns a zero amount for the given decimals.
func Zero(decimals uint8) Amount {
	return Amount{Value: big.NewInt(0), Decimals: decimals}
}

// Parse converts a human decimal string into a smallest-unit amount.
// Blank input is treated as zero. Negative values, non-numeric input, and
// fractional parts that do not fit into decimals digits are rejected.
func Parse(input string, decimals uint8) (Amount, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Zero(decimals), nil
	}

	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmountFormat, input)
	}
	if dec.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: negative amount %q", ErrInvalidAmountFormat, input)
	}

	shifted := dec.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return Amount{}, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmountFormat, input, decimals)
	}

	return Amount{Value: shifted.BigInt(), Decimals: decimals}, nil
}

// String renders the amount as a normalized human decimal string. It is the
// lossless inverse of Parse for any input with at most Decimals fractional
// digits.
func (a Amount) String() string {
	if a.Value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(a.Value, -int32(a.Decimals)).String()
}

// Format renders an arbitrary smallest-unit integer as a human decimal
// string for the given decimals.
func Format(value *big.Int, decimals uint8) string {
	return Amount{Value: value, Decimals: decimals}.String()
}
