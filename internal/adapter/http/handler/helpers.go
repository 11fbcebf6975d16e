package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/iho/cardledger/internal/adapter/http/dto"
	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/logger"
)

// retryAfterSeconds is sent with 503 responses for cards busy with another append.
const retryAfterSeconds = "1"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: code, Message: message})
}

// statusForKind maps error kinds to HTTP status codes.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnavailable:
		return http.StatusUnprocessableEntity
	case domain.KindBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError classifies err and writes the matching response.
// Infrastructure failures are logged and not echoed to the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	resp := dto.ErrorResponse{Error: kind.String(), Message: err.Error()}

	var rateErr *domain.RateUnavailableError
	if errors.As(err, &rateErr) {
		resp.Currency = rateErr.Currency
		resp.AsOf = rateErr.AsOf.Format(domain.DateLayout)
		resp.WindowStart = rateErr.WindowStart.Format(domain.DateLayout)
	}

	switch kind {
	case domain.KindBusy:
		w.Header().Set("Retry-After", retryAfterSeconds)
	case domain.KindInfrastructure:
		l := logger.FromContext(r.Context(), log.Logger)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		resp.Message = "internal server error"
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
