package observability_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
	"github.com/keyurdhanani/store-management-project/internal/observability"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	return rr.Body.String()
}

func TestMetrics_Middleware(t *testing.T) {
	m := observability.NewMetrics()

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/v1/sales")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	body := scrape(t, m)
	assert.Contains(t, body, `store_http_requests_total{code="409",route="/api/v1/sales"} 1`)
	assert.Contains(t, body, `store_http_request_duration_seconds_bucket{route="/api/v1/sales"`)
}

func TestMetrics_Ledger(t *testing.T) {
	m := observability.NewMetrics()

	m.ObserveLedger("sale.record", nil)
	m.ObserveLedger("sale.record", fmt.Errorf("line 0 (product 3): %w", &ledger.InsufficientStockError{ProductID: 3}))
	m.ObserveLedger("sale.record", fmt.Errorf("line 1 (product 4): %w", &ledger.InsufficientStockError{ProductID: 4}))
	m.SetDrift(2)

	body := scrape(t, m)
	assert.Contains(t, body, `ledger_operations_total{op="sale.record",outcome="ok"} 1`)
	assert.Contains(t, body, `ledger_operations_total{op="sale.record",outcome="insufficient_stock"} 2`)
	assert.Contains(t, body, `ledger_drift_products 2`)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, observability.OutcomeOK},
		{&ledger.InconsistentStateError{ProductID: 1}, observability.OutcomeInconsistentState},
		{fmt.Errorf("product 9: %w", ledger.ErrMissingLedgerRecord), observability.OutcomeMissingRecord},
		{ledger.ErrDuplicateInvoiceNumber, observability.OutcomeDuplicateInvoice},
		{fmt.Errorf("%w: deadlock", ledger.ErrRetryable), observability.OutcomeRetryable},
		{errors.New("boom"), observability.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, observability.Outcome(tt.err))
		})
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *observability.Metrics

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))

	m.ObserveLedger("sale.record", nil)
	m.SetDrift(1)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
