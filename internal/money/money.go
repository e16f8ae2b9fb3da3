// Package money holds monetary amounts as integer centavos so that bid
// comparisons and the minimum-increment rule never touch floating point.
package money

import (
	"fmt"
	"math"
	"strings"
)

// Money is an amount in centavos (hundredths of a real).
type Money int64

// SmallestUnit is one centavo, the minimum increment over a leading bid.
const SmallestUnit Money = 1

// FromFloat converts a decimal amount in reais to Money, rounding to the
// nearest centavo. Request payloads carry decimal amounts.
func FromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

// Float returns the amount in reais as a decimal for response payloads.
func (m Money) Float() float64 {
	return float64(m) / 100
}

func (m Money) IsPositive() bool {
	return m > 0
}

// Max returns the larger of m and other.
func (m Money) Max(other Money) Money {
	if other > m {
		return other
	}
	return m
}

// String formats the amount as Brazilian currency, e.g. "R$ 1.234,56".
func (m Money) String() string {
	neg := m < 0
	v := int64(m)
	if neg {
		v = -v
	}
	whole := v / 100
	cents := v % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents)
}
