// Package currency implements the fixed-point arithmetic used to value
// contributions in USD. All amounts and prices are integers scaled by
// 10^18 so fractional values are represented exactly.
package currency

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Decimals is the number of fractional digits carried by every fixed-point
// value in the ledger.
const Decimals = 18

// precision is the scaling factor for 18 decimal fixed-point values.
var precision = big.NewInt(1_000_000_000_000_000_000)

// USDValue computes the USD value of the specified amount at the specified
// price. Both inputs are 18 decimal fixed-point. The multiply is performed
// before the divide so the 36 decimal intermediate preserves precision.
func USDValue(amount *big.Int, price *big.Int) *big.Int {
	usd := new(big.Int).Mul(amount, price)
	return usd.Quo(usd, precision)
}

// Rescale converts a quote expressed with the specified number of decimals
// into an 18 decimal fixed-point value.
func Rescale(value *big.Int, decimals uint8) *big.Int {
	if decimals == Decimals {
		return new(big.Int).Set(value)
	}

	if decimals < Decimals {
		exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(Decimals-decimals)), nil)
		return new(big.Int).Mul(value, exp)
	}

	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-Decimals)), nil)
	return new(big.Int).Quo(value, exp)
}

// Parse converts a decimal string such as "5" or "0.0025" into an 18
// decimal fixed-point value.
func Parse(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > Decimals {
		return nil, fmt.Errorf("amount %q has more than %d fractional digits", s, Decimals)
	}

	// Right-pad the fraction to 18 digits so the combined digits are the
	// scaled integer representation.
	frac += strings.Repeat("0", Decimals-len(frac))

	v, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("amount %q is not a decimal number", s)
	}

	if neg {
		v.Neg(v)
	}

	return v, nil
}

// Format converts an 18 decimal fixed-point value into a decimal string
// with trailing fractional zeros removed.
func Format(v *big.Int) string {
	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(v, precision, frac)

	if frac.Sign() == 0 {
		return whole.String()
	}

	sign := ""
	if frac.Sign() < 0 {
		frac.Abs(frac)
		if whole.Sign() == 0 {
			sign = "-"
		}
	}

	fracDigits := frac.String()
	fracDigits = strings.Repeat("0", Decimals-len(fracDigits)) + fracDigits
	digits := strings.TrimRight(fracDigits, "0")

	return fmt.Sprintf("%s%s.%s", sign, whole.String(), digits)
}
