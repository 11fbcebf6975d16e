package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// IdempotencyKeyHeader is the header name for idempotency keys.
const IdempotencyKeyHeader = "Idempotency-Key"

type idempotencyKeyCtx struct{}

// IdempotencyKey makes every request carry a UUID idempotency key. A missing
// header gets a fresh UUIDv7, which makes that request unrepeatable; a
// malformed one is rejected. The key is echoed in the response header.
// Deduplication itself happens in the ledger, keyed by (card, key).
func IdempotencyKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(IdempotencyKeyHeader)

		var key uuid.UUID
		if raw == "" {
			var err error
			if key, err = uuid.NewV7(); err != nil {
				writeError(w, http.StatusInternalServerError, "internal", "cannot generate idempotency key")
				return
			}
		} else {
			var err error
			if key, err = uuid.Parse(raw); err != nil {
				writeError(w, http.StatusBadRequest, "validation", "Idempotency-Key must be a UUID")
				return
			}
		}

		w.Header().Set(IdempotencyKeyHeader, key.String())
		ctx := context.WithValue(r.Context(), idempotencyKeyCtx{}, key.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdempotencyKeyFromContext returns the key set by IdempotencyKey.
func IdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyCtx{}).(string)
	return key, ok
}
