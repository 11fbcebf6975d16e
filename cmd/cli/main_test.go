package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cardledger/internal/infrastructure/auth"
)

type recordedRequest struct {
	Method  string
	Path    string
	Query   string
	Body    map[string]string
	Headers http.Header
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]string
	if len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Body:    body,
		Headers: r.Header.Clone(),
	})
	f.mu.Unlock()

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(f.response))
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCardsCreate(t *testing.T) {
	api := &fakeAPI{status: http.StatusCreated, response: `{"cardId":"c1"}`}
	srv := httptest.NewServer(api)
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "--token", "tok",
		"cards", "create", "--number", "4111111111111111", "--limit", "1000")
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/cards", req.Path)
	assert.Equal(t, "4111111111111111", req.Body["cardNumber"])
	assert.Equal(t, "1000", req.Body["creditLimit"])
	assert.Equal(t, "Bearer tok", req.Headers.Get("Authorization"))
	assert.Equal(t, "{\n  \"cardId\": \"c1\"\n}\n", out)
}

func TestPurchasesCreate_SendsIdempotencyKey(t *testing.T) {
	api := &fakeAPI{status: http.StatusCreated, response: `{"purchaseId":"p1"}`}
	srv := httptest.NewServer(api)
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "purchases", "create", "c1",
		"--description", "Lunch", "--date", "2025-04-01", "--amount", "12.34",
		"--currency", "EUR", "--idempotency-key", "key-1")
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, "/api/v1/cards/c1/purchases", req.Path)
	assert.Equal(t, "key-1", req.Headers.Get("Idempotency-Key"))
	assert.Equal(t, map[string]string{
		"description":     "Lunch",
		"transactionDate": "2025-04-01",
		"amount":          "12.34",
		"currencyCode":    "EUR",
	}, req.Body)
}

func TestPurchasesCreate_GeneratesKey(t *testing.T) {
	api := &fakeAPI{status: http.StatusCreated, response: `{}`}
	srv := httptest.NewServer(api)
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "purchases", "create", "c1",
		"--description", "Lunch", "--amount", "1")
	require.NoError(t, err)
	assert.Len(t, api.last(t).Headers.Get("Idempotency-Key"), 36)
}

func TestQueryCommands(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPath  string
		wantQuery string
	}{
		{"card get", []string{"cards", "get", "c1"}, "/api/v1/cards/c1", ""},
		{"total spend", []string{"cards", "total-spend", "c1"}, "/api/v1/cards/c1/total-spend", ""},
		{"balance", []string{"cards", "balance", "c1", "--currency", "EUR"}, "/api/v1/cards/c1/available-balance", "currency=EUR"},
		{"reconcile", []string{"cards", "reconcile", "c1"}, "/api/v1/cards/c1/reconcile", ""},
		{"purchase get", []string{"purchases", "get", "p1", "--currency", "JPY"}, "/api/v1/purchases/p1", "currency=JPY"},
		{"purchase list", []string{"purchases", "list", "c1", "--limit", "5"}, "/api/v1/cards/c1/purchases", "limit=5&offset=0"},
		{"fx", []string{"fx"}, "/api/v1/fx-rates", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{response: `{"ok":true}`}
			srv := httptest.NewServer(api)
			defer srv.Close()

			_, err := execute(t, append([]string{"--url", srv.URL}, tt.args...)...)
			require.NoError(t, err)

			req := api.last(t)
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, tt.wantQuery, req.Query)
		})
	}
}

func TestAPIErrorIsReturned(t *testing.T) {
	api := &fakeAPI{status: http.StatusNotFound, response: `{"error":"not_found","message":"card not found"}`}
	srv := httptest.NewServer(api)
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "cards", "get", "missing")
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, err.Error(), "card not found")
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, "token", "--secret", "s3cret", "--subject", "alice", "--role", "viewer")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("s3cret", time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, auth.RoleViewer, claims.Role)
}

func TestTokenCommand_RejectsUnknownRole(t *testing.T) {
	_, err := execute(t, "token", "--secret", "s3cret", "--role", "admin")
	require.Error(t, err)
}

func TestCardsCreate_RequiresFlags(t *testing.T) {
	_, err := execute(t, "cards", "create", "--number", "4111111111111111")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}
