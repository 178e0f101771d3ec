package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Money is an amount in cents
type Money int64

var (
	ErrInvalidMoney  = errors.New("invalid money amount")
	ErrMoneyOverflow = errors.New("money amount out of range")
)

// Dollars builds a Money value from whole dollars and cents, e.g. Dollars(12, 50) is 12.50
func Dollars(dollars, cents int64) Money {
	if dollars < 0 {
		return Money(dollars*100 - cents)
	}
	return Money(dollars*100 + cents)
}

// String formats the amount with two decimals, without currency sign
func (m Money) String() string {
	v := int64(m)
	u := uint64(v)
	sign := ""
	if v < 0 {
		sign = "-"
		// -MinInt64 wraps to itself; as uint64 it is still the right magnitude
		u = uint64(-v)
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/100, u%100)
}

// Float returns the amount in dollars. For display and JSON only.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// ParseMoney parses "12", "12.5", "12.50" or "-0,75" into cents.
// Digits after the second decimal place are truncated. Amounts whose
// magnitude does not fit in int64 cents fail with ErrInvalidMoney.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}

	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" || s == "." {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	var whole, frac int64
	var seenDot bool
	var fracDigits int

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if seenDot {
				return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
			}
			seenDot = true
			continue
		}
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
		}
		d := int64(c - '0')
		if !seenDot {
			if whole > (math.MaxInt64-d)/10 {
				return 0, fmt.Errorf("%w: %q exceeds the largest amount", ErrInvalidMoney, s)
			}
			whole = whole*10 + d
		} else if fracDigits < 2 {
			frac = frac*10 + d
			fracDigits++
		}
	}

	if fracDigits == 1 {
		frac *= 10
	}

	if whole > (math.MaxInt64-frac)/100 {
		return 0, fmt.Errorf("%w: %q exceeds the largest amount", ErrInvalidMoney, s)
	}

	v := whole*100 + frac
	if neg {
		v = -v
	}
	return Money(v), nil
}

// AddMoney returns a+b, or ErrMoneyOverflow when the sum does not fit
func AddMoney(a, b Money) (Money, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("%w: %s + %s", ErrMoneyOverflow, a, b)
	}
	return a + b, nil
}

// SubMoney returns a-b, or ErrMoneyOverflow when the difference does not fit
func SubMoney(a, b Money) (Money, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, fmt.Errorf("%w: %s - %s", ErrMoneyOverflow, a, b)
	}
	return a - b, nil
}

// MoneyFromFloat rounds a dollar amount to the nearest cent
func MoneyFromFloat(f float64) Money {
	if f < 0 {
		return Money(f*100 - 0.5)
	}
	return Money(f*100 + 0.5)
}
