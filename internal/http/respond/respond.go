// Package respond writes JSON responses and maps domain errors to HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/keyurdhanani/store-management-project/internal/catalog"
	"github.com/keyurdhanani/store-management-project/internal/importer/supplier"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
	"github.com/keyurdhanani/store-management-project/internal/matching"
	"github.com/keyurdhanani/store-management-project/internal/purchase"
	"github.com/keyurdhanani/store-management-project/internal/report"
	"github.com/keyurdhanani/store-management-project/internal/sale"
)

// RetryAfter is sent with 503 responses for lock contention.
const RetryAfter = "1"

type errorResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"product_id,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// Decode reads a JSON request body into dst, writing a 400 when it is malformed.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid request body: "+err.Error())
		return false
	}

	return true
}

// ID parses a positive integer URL parameter, writing a 400 when it is not one.
func ID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(w, "invalid "+name)
		return 0, false
	}

	return id, true
}

var (
	badRequest = []error{
		catalog.ErrInvalidInput,
		catalog.ErrInvalidPrice,
		purchase.ErrInvalidInput,
		purchase.ErrInvalidUnitCost,
		sale.ErrInvalidInput,
		sale.ErrInvalidRate,
		sale.ErrInvalidPrice,
		ledger.ErrInvalidQuantity,
		ledger.ErrInvalidThreshold,
		report.ErrInvalidRange,
		matching.ErrInvalidPattern,
		supplier.ErrUnknownLayout,
	}
	notFound = []error{
		catalog.ErrNotFound,
		purchase.ErrNotFound,
		sale.ErrNotFound,
		matching.ErrNotFound,
		ledger.ErrMissingLedgerRecord,
	}
	conflict = []error{
		catalog.ErrDuplicateName,
		catalog.ErrProductInUse,
		ledger.ErrDuplicateInvoiceNumber,
		ledger.ErrDuplicateBatchNumber,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}

	return false
}

// Error writes the status matching err. Unexpected errors are logged and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var short *ledger.InsufficientStockError

	switch {
	case errors.As(err, &short):
		JSON(w, http.StatusConflict, errorResponse{
			Error:     err.Error(),
			ProductID: short.ProductID,
			Requested: short.Requested,
			Available: new(short.Available),
		})
	case errors.Is(err, ledger.ErrRetryable):
		w.Header().Set("Retry-After", RetryAfter)
		JSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store busy, retry"})
	case errors.Is(err, ledger.ErrInconsistentState):
		slog.Error("ledger inconsistency", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "ledger inconsistency detected"})
	case errors.Is(err, matching.ErrUnknownProduct):
		JSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case isAny(err, badRequest):
		JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case isAny(err, notFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case isAny(err, conflict):
		JSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
