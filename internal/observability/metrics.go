package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

// Ledger operation outcomes.
const (
	OutcomeOK                = "ok"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeInconsistentState = "inconsistent_state"
	OutcomeMissingRecord     = "missing_record"
	OutcomeDuplicateInvoice  = "duplicate_invoice"
	OutcomeRetryable         = "retryable"
	OutcomeError             = "error"
)

// Metrics holds the Prometheus registry of one process.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ledgerOps       *prometheus.CounterVec
	driftProducts   prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	ledgerOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	drift := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_drift_products",
		Help: "Products whose stock differs from the sum of their batches at the last reconciliation.",
	})
	registry.MustRegister(requests, duration, ledgerOps, drift)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		ledgerOps:       ledgerOps,
		driftProducts:   drift,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}

	return m.handler
}

// Middleware counts requests and their duration per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)

		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveLedger records the outcome of a ledger mutation such as "sale.record".
func (m *Metrics) ObserveLedger(op string, err error) {
	if m == nil {
		return
	}

	m.ledgerOps.WithLabelValues(op, Outcome(err)).Inc()
}

// SetDrift publishes the number of drifting products found by the last reconciliation.
func (m *Metrics) SetDrift(n int) {
	if m == nil {
		return
	}

	m.driftProducts.Set(float64(n))
}

// Outcome maps a ledger error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ledger.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, ledger.ErrInconsistentState):
		return OutcomeInconsistentState
	case errors.Is(err, ledger.ErrMissingLedgerRecord):
		return OutcomeMissingRecord
	case errors.Is(err, ledger.ErrDuplicateInvoiceNumber):
		return OutcomeDuplicateInvoice
	case errors.Is(err, ledger.ErrRetryable):
		return OutcomeRetryable
	default:
		return OutcomeError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return "unknown"
}
