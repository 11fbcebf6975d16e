package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency all ledger totals and credit limits are kept in.
const BaseCurrency = "USD"

// LedgerScale is the number of decimal places the ledger stores.
const LedgerScale int32 = 2

// MaxScale is the largest scale WithScale accepts.
const MaxScale int32 = 28

// RoundingMode selects how WithScale treats the discarded digits.
type RoundingMode int

const (
	// RoundHalfAwayFromZero is the convention for currency display.
	RoundHalfAwayFromZero RoundingMode = iota
	RoundHalfEven
	RoundDown
	RoundUp
)

// Money is an exact decimal amount tied to a currency code.
// The zero value has no currency and is only useful as a placeholder.
type Money struct {
	amount   decimal.Decimal
	currency string
	locale   string
}

// NewMoney builds a Money value. The code is trimmed and uppercased.
func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	code = NormalizeCurrency(code)
	if code == "" {
		return Money{}, ErrMissingCurrencyCode
	}
	return Money{amount: amount, currency: code}, nil
}

// NewMoneyWithLocale builds a Money value that prefers the given display locale.
func NewMoneyWithLocale(amount decimal.Decimal, code, localeTag string) (Money, error) {
	m, err := NewMoney(amount, code)
	if err != nil {
		return Money{}, err
	}
	if _, ok := LocaleByTag(localeTag); !ok {
		return Money{}, fmt.Errorf("%w: %q", ErrUnknownLocale, localeTag)
	}
	m.locale = localeTag
	return m, nil
}

// MustMoney parses amount and panics on error. Intended for constants and tests.
func MustMoney(amount, code string) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), code)
	if err != nil {
		panic(err)
	}
	return m
}

// USD returns amount in the base currency.
func USD(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: BaseCurrency}
}

// Zero returns a zero amount in code.
func Zero(code string) (Money, error) {
	return NewMoney(decimal.Zero, code)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) Locale() string          { return m.locale }

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

func (m Money) sameCurrency(o Money) error {
	if !strings.EqualFold(m.currency, o.currency) {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, o.currency)
	}
	return nil
}

func (m Money) with(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: m.currency, locale: m.locale}
}

func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Add(o.amount)), nil
}

func (m Money) Sub(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Sub(o.amount)), nil
}

func (m Money) Mul(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Mul(o.amount)), nil
}

func (m Money) Div(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	if o.amount.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	return m.with(m.amount.Div(o.amount)), nil
}

func (m Money) Mod(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	if o.amount.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	return m.with(m.amount.Mod(o.amount)), nil
}

// Cmp returns -1, 0 or +1 like decimal.Cmp.
func (m Money) Cmp(o Money) (int, error) {
	if err := m.sameCurrency(o); err != nil {
		return 0, err
	}
	return m.amount.Cmp(o.amount), nil
}

// Equal compares amounts numerically, so 1.5 equals 1.50.
func (m Money) Equal(o Money) (bool, error) {
	c, err := m.Cmp(o)
	return c == 0, err
}

func (m Money) LessThan(o Money) (bool, error) {
	c, err := m.Cmp(o)
	return c < 0, err
}

func (m Money) LessThanOrEqual(o Money) (bool, error) {
	c, err := m.Cmp(o)
	return c <= 0, err
}

func (m Money) GreaterThan(o Money) (bool, error) {
	c, err := m.Cmp(o)
	return c > 0, err
}

func (m Money) GreaterThanOrEqual(o Money) (bool, error) {
	c, err := m.Cmp(o)
	return c >= 0, err
}

// MulRate scales the amount by a dimensionless rate, keeping the currency.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return m.with(m.amount.Mul(rate))
}

// DivRate divides the amount by a dimensionless rate, keeping the currency.
func (m Money) DivRate(rate decimal.Decimal) (Money, error) {
	if rate.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	return m.with(m.amount.Div(rate)), nil
}

// In re-denominates the amount in another currency without touching the number.
func (m Money) In(code string) (Money, error) {
	return NewMoney(m.amount, code)
}

func (m Money) Negate() Money { return m.with(m.amount.Neg()) }
func (m Money) Abs() Money    { return m.with(m.amount.Abs()) }

// WithScale rounds to decimals places using mode.
func (m Money) WithScale(decimals int32, mode RoundingMode) (Money, error) {
	if decimals < 0 || decimals > MaxScale {
		return Money{}, fmt.Errorf("%w: got %d", ErrInvalidScale, decimals)
	}
	var d decimal.Decimal
	switch mode {
	case RoundHalfEven:
		d = m.amount.RoundBank(decimals)
	case RoundDown:
		d = m.amount.RoundDown(decimals)
	case RoundUp:
		d = m.amount.RoundUp(decimals)
	default:
		d = m.amount.Round(decimals)
	}
	return m.with(d), nil
}

// ForLedger rounds half away from zero to the ledger scale.
func (m Money) ForLedger() Money {
	return m.with(m.amount.Round(LedgerScale))
}

// Max returns the larger of m and o.
func Max(m, o Money) (Money, error) {
	c, err := m.Cmp(o)
	if err != nil {
		return Money{}, err
	}
	if c >= 0 {
		return m, nil
	}
	return o, nil
}

// Sum adds up list. All elements must share a currency; an empty list has none.
func Sum(list []Money) (Money, error) {
	if len(list) == 0 {
		return Money{}, fmt.Errorf("%w: empty list", ErrCurrencyMismatch)
	}
	total := list[0]
	for _, m := range list[1:] {
		var err error
		if total, err = total.Add(m); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (m Money) String() string {
	return m.Format()
}
