package units

import (
	"errors"
	"math/big"
	"testing"
)

func TestParseSmallestUnit(t *testing.T) {
	cases := []struct {
		input    string
		decimals uint8
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"0.01", 18, "10000000000000000"},
		{"50", 6, "50000000"},
		{"0.000001", 6, "1"},
		{"123.456789", 6, "123456789"},
		{"", 6, "0"},
		{"   ", 18, "0"},
		{"0", 18, "0"},
	}

	for _, tc := range cases {
		got, err := Parse(tc.input, tc.decimals)
		if err != nil {
			t.Fatalf("Parse(%q, %d) failed: %v", tc.input, tc.decimals, err)
		}
		if got.Value.String() != tc.want {
			t.Fatalf("Parse(%q, %d) = %s, want %s", tc.input, tc.decimals, got.Value, tc.want)
		}
		if got.Decimals != tc.decimals {
			t.Fatalf("Parse(%q) decimals = %d, want %d", tc.input, got.Decimals, tc.decimals)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		input    string
		decimals uint8
	}{
		{"abc", 18},
		{"1.2.3", 18},
		{"-1", 18},
		{"0.0000001", 6},
		{"1,5", 18},
	}

	for _, tc := range cases {
		if _, err := Parse(tc.input, tc.decimals); !errors.Is(err, ErrInvalidAmountFormat) {
			t.Fatalf("Parse(%q, %d) error = %v, want ErrInvalidAmountFormat", tc.input, tc.decimals, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		input    string
		decimals uint8
		want     string
	}{
		{"1", 18, "1"},
		{"0.01", 18, "0.01"},
		{"123.456789", 6, "123.456789"},
		{"0.010", 6, "0.01"},
		{"0", 6, "0"},
		{"", 18, "0"},
	}

	for _, tc := range cases {
		amount, err := Parse(tc.input, tc.decimals)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.input, err)
		}
		if got := amount.String(); got != tc.want {
			t.Fatalf("round trip of %q = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFormat(t *testing.T) {
	value := new(big.Int)
	value.SetString("1234500000", 10)

	if got := Format(value, 6); got != "1234.5" {
		t.Fatalf("Format = %q, want %q", got, "1234.5")
	}
	if got := Format(nil, 6); got != "0" {
		t.Fatalf("Format(nil) = %q, want 0", got)
	}
}
