package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Validation errors
var (
	ErrInvalidCardNumber      = errors.New("invalid card number")
	ErrInvalidCreditLimit     = errors.New("credit limit must be positive")
	ErrUnsupportedCurrency    = errors.New("unsupported currency")
	ErrInvalidCurrency        = errors.New("invalid currency code")
	ErrInvalidDescription     = errors.New("invalid description")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidIdempotencyKey  = errors.New("invalid idempotency key")
	ErrInvalidTransactionDate = errors.New("invalid transaction date")
	ErrInvalidIDFormat        = errors.New("invalid ID format")
)

var validationErrors = []error{
	ErrMissingCurrencyCode,
	ErrInvalidScale,
	ErrDivisionByZero,
	ErrUnknownLocale,
	ErrInvalidCardNumber,
	ErrInvalidCreditLimit,
	ErrUnsupportedCurrency,
	ErrInvalidCurrency,
	ErrInvalidDescription,
	ErrInvalidAmount,
	ErrInvalidIdempotencyKey,
	ErrInvalidTransactionDate,
	ErrInvalidIDFormat,
}

// Validation constants
const (
	CardNumberLength        = 16
	MaxDescriptionLength    = 50
	MaxIdempotencyKeyLength = 64
	MaxPageSize             = 100
	DefaultPageSize         = 20
)

// ValidateCardNumber requires exactly 16 ASCII digits.
func ValidateCardNumber(number string) error {
	if len(number) != CardNumberLength {
		return fmt.Errorf("%w: must be %d digits", ErrInvalidCardNumber, CardNumberLength)
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return fmt.Errorf("%w: must contain only digits", ErrInvalidCardNumber)
		}
	}
	return nil
}

// ValidateCreditLimit requires a limit in the base currency that is still
// positive once rounded to the ledger scale.
func ValidateCreditLimit(limit decimal.Decimal, code string) error {
	if !limit.Round(LedgerScale).IsPositive() {
		return ErrInvalidCreditLimit
	}
	if NormalizeCurrency(code) != BaseCurrency {
		return fmt.Errorf("%w: credit limits must be in %s", ErrUnsupportedCurrency, BaseCurrency)
	}
	return nil
}

// ValidateCurrency checks that code is a known ISO 4217 currency.
func ValidateCurrency(code string) error {
	code = NormalizeCurrency(code)
	if !isAlpha3(code) {
		return fmt.Errorf("%w: %q must be 3 letters", ErrInvalidCurrency, code)
	}
	if _, err := currency.ParseISO(code); err != nil {
		return fmt.Errorf("%w: %q is not an ISO 4217 code", ErrInvalidCurrency, code)
	}
	return nil
}

// ValidateDescription trims and bounds the purchase description.
func ValidateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("%w: cannot be empty", ErrInvalidDescription)
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}
	return description, nil
}

// ValidateAmount requires a strictly positive amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateIdempotencyKey bounds the caller supplied key.
func ValidateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidIdempotencyKey)
	}
	if len(key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidIdempotencyKey, MaxIdempotencyKeyLength)
	}
	return nil
}

// ValidatePagination clamps limit and offset to sane values.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// NormalizeCurrency trims and uppercases a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func isAlpha3(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
