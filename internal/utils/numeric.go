package utils

import (
	"math"
	"strconv"
	"strings"
)

// LooseFloat coerces a store field to a float64, tolerating currency symbols,
// thousands separators, and stray text. Everything except digits, a leading
// sign, and the decimal point is stripped; empty or unparseable input is 0.
// Applied once at the store boundary so consumers see clean numbers.
func LooseFloat(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case (r == '-' || r == '+') && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
