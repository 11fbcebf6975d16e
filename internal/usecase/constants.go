package usecase

import (
	"context"
	"time"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second
)

// Append outcomes reported to LedgerMetrics.
const (
	OutcomeRecorded      = "recorded"
	OutcomeReplayed      = "replayed"
	OutcomeLimitExceeded = "limit_exceeded"
	OutcomeNotFound      = "not_found"
	OutcomeBusy          = "busy"
	OutcomeError         = "error"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the wall clock in UTC.
var SystemClock Clock = systemClock{}

type noopMetrics struct{}

func (noopMetrics) ObserveAppend(string, time.Duration) {}

type noopRetrier struct{}

func (noopRetrier) Retry(_ context.Context, operation func() error) error { return operation() }
