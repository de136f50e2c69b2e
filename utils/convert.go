package utils

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const (
	// NanoDecimals is the number of fractional digits of the native coin
	NanoDecimals = 9
)

var nanoScale = uint256.NewInt(1_000_000_000)

// ToNano parses a decimal amount of native coins ("1", "0.05") into nano units.
func ToNano(amount string) (*uint256.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}
	whole, frac, hasFrac := strings.Cut(amount, ".")
	if hasFrac && (frac == "" || len(frac) > NanoDecimals) {
		return nil, fmt.Errorf("invalid amount %q: at most %d fractional digits", amount, NanoDecimals)
	}
	if whole == "" {
		whole = "0"
	}
	w, err := uint256.FromDecimal(whole)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	out, overflow := new(uint256.Int).MulOverflow(w, nanoScale)
	if overflow {
		return nil, fmt.Errorf("amount %q overflows", amount)
	}
	if hasFrac {
		f, err := uint256.FromDecimal(frac + strings.Repeat("0", NanoDecimals-len(frac)))
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
		}
		out.Add(out, f)
	}
	return out, nil
}

// MustToNano is ToNano for constants.
func MustToNano(amount string) *uint256.Int {
	v, err := ToNano(amount)
	if err != nil {
		panic(err)
	}
	return v
}

// FromNano renders nano units as a decimal amount without trailing zeros.
func FromNano(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	q, r := new(uint256.Int).DivMod(v, nanoScale, new(uint256.Int))
	if r.IsZero() {
		return q.Dec()
	}
	frac := r.Dec()
	frac = strings.Repeat("0", NanoDecimals-len(frac)) + frac
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}
