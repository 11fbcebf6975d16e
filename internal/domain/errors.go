package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Money errors
	ErrMissingCurrencyCode = errors.New("currency code is required")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrInvalidScale        = errors.New("scale must be between 0 and 28")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrUnknownLocale       = errors.New("unknown display locale")

	// Card errors
	ErrCardNotFound        = errors.New("card not found")
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	ErrCardBusy            = errors.New("card is busy, retry later")

	// Purchase errors
	ErrPurchaseNotFound = errors.New("purchase not found")

	// FX errors
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// RateUnavailableError names the currency and the exact window that was searched.
type RateUnavailableError struct {
	Currency    string
	AsOf        time.Time
	WindowStart time.Time
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no %s exchange rate between %s and %s",
		e.Currency, e.WindowStart.Format(DateLayout), e.AsOf.Format(DateLayout))
}

func (e *RateUnavailableError) Unwrap() error {
	return ErrRateUnavailable
}

// ErrorKind groups errors by how callers should react to them.
type ErrorKind int

const (
	KindInfrastructure ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
	KindBusy
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindBusy:
		return "busy"
	default:
		return "infrastructure"
	}
}

// KindOf classifies err. Anything not recognised is an infrastructure failure.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInfrastructure
	case errors.Is(err, ErrCardNotFound), errors.Is(err, ErrPurchaseNotFound):
		return KindNotFound
	case errors.Is(err, ErrCreditLimitExceeded), errors.Is(err, ErrCurrencyMismatch):
		return KindConflict
	case errors.Is(err, ErrRateUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrCardBusy):
		return KindBusy
	case isValidation(err):
		return KindValidation
	default:
		return KindInfrastructure
	}
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
