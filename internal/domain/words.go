package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "Ten", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}

	scales = []struct {
		divisor int64
		word    string
	}{
		{1_000_000_000, "Billion"},
		{1_000_000, "Million"},
		{1_000, "Thousand"},
	}
)

// SpellOut renders the absolute value of m in English words, e.g.
// "One Hundred And Twenty Three Dollars And Forty Five Cents".
// Amounts of a trillion or more are not supported and are spelled modulo 10^12.
func SpellOut(m Money) string {
	rounded := m.amount.Abs().Round(2)
	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Mul(decimal.NewFromInt(100)).IntPart()
	units := whole.Mod(decimal.New(1, 12)).IntPart()

	var parts []string
	if units == 0 {
		parts = append(parts, "No")
	} else {
		rest := units
		for _, s := range scales {
			if group := rest / s.divisor; group > 0 {
				parts = append(parts, threeDigits(group), s.word)
			}
			rest %= s.divisor
		}
		if rest > 0 && rest < 100 && len(parts) > 0 {
			parts = append(parts, "And")
		}
		if rest > 0 {
			parts = append(parts, threeDigits(rest))
		}
	}

	unit := m.currency
	if unit == BaseCurrency {
		unit = "Dollar"
		if units != 1 {
			unit = "Dollars"
		}
	}
	parts = append(parts, unit, "And")

	if cents == 0 {
		parts = append(parts, "No", "Cents")
	} else {
		parts = append(parts, threeDigits(cents))
		if cents == 1 {
			parts = append(parts, "Cent")
		} else {
			parts = append(parts, "Cents")
		}
	}
	return strings.Join(parts, " ")
}

func threeDigits(n int64) string {
	hundreds, rest := n/100, n%100
	var parts []string
	if hundreds > 0 {
		parts = append(parts, ones[hundreds], "Hundred")
	}
	if rest > 0 {
		if hundreds > 0 {
			parts = append(parts, "And")
		}
		parts = append(parts, twoDigits(rest))
	}
	return strings.Join(parts, " ")
}

func twoDigits(n int64) string {
	switch {
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n%10 == 0:
		return tens[n/10]
	default:
		return tens[n/10] + " " + ones[n%10]
	}
}
