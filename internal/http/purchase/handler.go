package purchase

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/http/respond"
	"github.com/keyurdhanani/store-management-project/internal/purchase"
)

type Observer interface {
	ObserveLedger(op string, err error)
}

type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Handler struct {
	svc     *purchase.Service
	metrics Observer
	reports Invalidator
}

func NewHandler(svc *purchase.Service, metrics Observer, reports Invalidator) *Handler {
	return &Handler{svc: svc, metrics: metrics, reports: reports}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// done records the outcome of a ledger mutation and drops cached reports when it committed.
func (h *Handler) done(ctx context.Context, op string, err error) {
	h.metrics.ObserveLedger(op, err)

	if err == nil {
		h.reports.Invalidate(ctx)
	}
}

type purchaseRequest struct {
	ProductID     int64           `json:"product_id"`
	SupplierID    *int64          `json:"supplier_id"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	InvoiceNumber string          `json:"invoice_number"`
	BatchNumber   string          `json:"batch_number"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.Record(r.Context(), purchase.RecordParams{
		ProductID:     req.ProductID,
		SupplierID:    req.SupplierID,
		Quantity:      req.Quantity,
		UnitCost:      req.UnitCost,
		InvoiceNumber: req.InvoiceNumber,
		BatchNumber:   req.BatchNumber,
		ExpiryDate:    req.ExpiryDate,
	})
	h.done(r.Context(), "purchase.record", err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter purchase.ListFilter

	q := r.URL.Query()

	var err error

	if filter.ProductID, err = optionalID(q.Get("product_id")); err != nil {
		respond.BadRequest(w, "invalid product_id")
		return
	}

	if filter.SupplierID, err = optionalID(q.Get("supplier_id")); err != nil {
		respond.BadRequest(w, "invalid supplier_id")
		return
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	ps, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(ps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	var req purchaseRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.Update(r.Context(), id, purchase.UpdateParams{
		SupplierID:    req.SupplierID,
		Quantity:      req.Quantity,
		UnitCost:      req.UnitCost,
		InvoiceNumber: req.InvoiceNumber,
		BatchNumber:   req.BatchNumber,
		ExpiryDate:    req.ExpiryDate,
	})
	h.done(r.Context(), "purchase.update", err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	err := h.svc.Delete(r.Context(), id)
	h.done(r.Context(), "purchase.delete", err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func optionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}

	return &id, nil
}
