package sale

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/http/respond"
	"github.com/keyurdhanani/store-management-project/internal/sale"
)

type Observer interface {
	ObserveLedger(op string, err error)
}

type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Handler struct {
	svc     *sale.Service
	metrics Observer
	reports Invalidator
}

func NewHandler(svc *sale.Service, metrics Observer, reports Invalidator) *Handler {
	return &Handler{svc: svc, metrics: metrics, reports: reports}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type lineRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type saleRequest struct {
	CustomerName string          `json:"customer_name"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Items        []lineRequest   `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := sale.RecordParams{
		CustomerName: req.CustomerName,
		DiscountRate: req.DiscountRate,
		TaxRate:      req.TaxRate,
		Lines:        make([]sale.LineParams, len(req.Items)),
	}

	for i, it := range req.Items {
		params.Lines[i] = sale.LineParams{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}

	inv, err := h.svc.Record(r.Context(), params)
	h.metrics.ObserveLedger("sale.record", err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.reports.Invalidate(r.Context())

	respond.JSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter sale.ListFilter

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	invs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		out[i] = toResponse(inv)
	}

	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}
