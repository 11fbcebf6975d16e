package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultLocaleTag is the display locale used when none is given.
const DefaultLocaleTag = "en-US"

// Locale describes how amounts in one currency are displayed.
type Locale struct {
	Tag         string
	Currency    string
	Symbol      string
	SymbolAfter bool
	SymbolSpace bool
	Group       string
	Decimal     string
	Digits      int32
}

var locales = []Locale{
	{Tag: "en-US", Currency: "USD", Symbol: "$", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "en-GB", Currency: "GBP", Symbol: "£", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "de-DE", Currency: "EUR", Symbol: "€", SymbolAfter: true, SymbolSpace: true, Group: ".", Decimal: ",", Digits: 2},
	{Tag: "ja-JP", Currency: "JPY", Symbol: "¥", Group: ",", Decimal: ".", Digits: 0},
	{Tag: "en-AU", Currency: "AUD", Symbol: "$", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "en-CA", Currency: "CAD", Symbol: "$", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "de-CH", Currency: "CHF", Symbol: "CHF", SymbolSpace: true, Group: "'", Decimal: ".", Digits: 2},
	{Tag: "en-IN", Currency: "INR", Symbol: "₹", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "pt-BR", Currency: "BRL", Symbol: "R$", SymbolSpace: true, Group: ".", Decimal: ",", Digits: 2},
	{Tag: "zh-CN", Currency: "CNY", Symbol: "¥", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "es-MX", Currency: "MXN", Symbol: "$", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "ko-KR", Currency: "KRW", Symbol: "₩", Group: ",", Decimal: ".", Digits: 0},
	{Tag: "en-NZ", Currency: "NZD", Symbol: "$", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "sv-SE", Currency: "SEK", Symbol: "kr", SymbolAfter: true, SymbolSpace: true, Group: " ", Decimal: ",", Digits: 2},
	{Tag: "nb-NO", Currency: "NOK", Symbol: "kr", SymbolSpace: true, Group: " ", Decimal: ",", Digits: 2},
	{Tag: "en-SG", Currency: "SGD", Symbol: "$", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "zh-HK", Currency: "HKD", Symbol: "HK$", Group: ",", Decimal: ".", Digits: 2},
	{Tag: "en-ZA", Currency: "ZAR", Symbol: "R", Group: " ", Decimal: ",", Digits: 2},
	{Tag: "tr-TR", Currency: "TRY", Symbol: "₺", Group: ".", Decimal: ",", Digits: 2},
	{Tag: "pl-PL", Currency: "PLN", Symbol: "zł", SymbolAfter: true, SymbolSpace: true, Group: " ", Decimal: ",", Digits: 2},
}

var (
	localesByTag      = make(map[string]Locale, len(locales))
	localesByCurrency = make(map[string]Locale, len(locales))
)

func init() {
	for _, l := range locales {
		localesByTag[strings.ToLower(l.Tag)] = l
		if _, ok := localesByCurrency[l.Currency]; !ok {
			localesByCurrency[l.Currency] = l
		}
	}
}

// LocaleByTag looks up a display locale by its tag, case-insensitively.
func LocaleByTag(tag string) (Locale, bool) {
	l, ok := localesByTag[strings.ToLower(strings.TrimSpace(tag))]
	return l, ok
}

// LocaleForCurrency returns the preferred display locale for an ISO code.
func LocaleForCurrency(code string) (Locale, bool) {
	l, ok := localesByCurrency[NormalizeCurrency(code)]
	return l, ok
}

func (m Money) displayLocale() (Locale, bool) {
	if m.locale != "" {
		if l, ok := LocaleByTag(m.locale); ok && l.Currency == m.currency {
			return l, true
		}
	}
	return LocaleForCurrency(m.currency)
}

// Format renders the amount rounded to two places. Currencies with a known
// locale get their symbol ("$1,234.50"); others get "1,234.50 CODE".
func (m Money) Format() string {
	rounded := m.amount.Round(LedgerScale)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	l, ok := m.displayLocale()
	if !ok {
		def := localesByTag[strings.ToLower(DefaultLocaleTag)]
		return sign + formatNumber(rounded.Abs(), LedgerScale, def.Group, def.Decimal) + " " + m.currency
	}

	number := formatNumber(rounded.Abs().Round(l.Digits), l.Digits, l.Group, l.Decimal)
	space := ""
	if l.SymbolSpace {
		space = " "
	}
	if l.SymbolAfter {
		return sign + number + space + l.Symbol
	}
	return sign + l.Symbol + space + number
}

func formatNumber(d decimal.Decimal, digits int32, group, dec string) string {
	s := d.StringFixed(digits)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteString(dec)
		b.WriteString(fracPart)
	}
	return b.String()
}

// Parse reads an amount with an optional trailing currency code using the
// default display locale.
func Parse(text string) (Money, error) {
	return ParseWithLocale(text, DefaultLocaleTag)
}

// ParseWithLocale reads text such as "$1,234.50", "12.50 EUR" or "(3.00)".
// Without a trailing code the currency of the locale is assumed.
func ParseWithLocale(text, tag string) (Money, error) {
	l, ok := LocaleByTag(tag)
	if !ok {
		return Money{}, fmt.Errorf("%w: %q", ErrUnknownLocale, tag)
	}

	s := strings.TrimSpace(text)
	code := l.Currency
	if n := len(s); n >= 3 && isLetters(s[n-3:]) {
		code = strings.ToUpper(s[n-3:])
		s = strings.TrimSpace(s[:n-3])
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}

	s = strings.ReplaceAll(s, l.Symbol, "")
	if cl, ok := LocaleForCurrency(code); ok {
		s = strings.ReplaceAll(s, cl.Symbol, "")
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	s = strings.ReplaceAll(s, l.Group, "")
	s = strings.ReplaceAll(s, " ", "")
	if l.Decimal != "." {
		s = strings.ReplaceAll(s, l.Decimal, ".")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil || s == "" {
		return Money{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidAmount, text)
	}
	if negative {
		amount = amount.Neg()
	}

	m, err := NewMoney(amount, code)
	if err != nil {
		return Money{}, err
	}
	if l.Currency == m.currency {
		m.locale = l.Tag
	}
	return m, nil
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
