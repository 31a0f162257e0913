package stock

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/http/respond"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

// Reconciler runs a ledger consistency check and returns the drifting products.
type Reconciler interface {
	Run(ctx context.Context) ([]ledger.Drift, error)
}

type Handler struct {
	svc        *ledger.Service
	reconciler Reconciler
}

func NewHandler(svc *ledger.Service, reconciler Reconciler) *Handler {
	return &Handler{svc: svc, reconciler: reconciler}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{productID}", h.get)
	r.Get("/{productID}/batches", h.batches)
	r.Put("/{productID}/threshold", h.updateSettings)
}

func (h *Handler) LedgerRoutes(r chi.Router) {
	r.Post("/reconcile", h.reconcile)
}

type stockResponse struct {
	ProductID         int64      `json:"product_id"`
	ProductName       string     `json:"product_name"`
	Quantity          int        `json:"quantity"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	LowStock          bool       `json:"low_stock"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

type batchResponse struct {
	ID         int64           `json:"id"`
	Number     string          `json:"batch_number"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	Quantity   int             `json:"quantity"`
	CreatedAt  time.Time       `json:"created_at"`
}

type driftResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	BatchTotal  int    `json:"batch_total"`
}

func toStock(s *ledger.Stock) stockResponse {
	return stockResponse{
		ProductID:         s.ProductID,
		ProductName:       s.ProductName,
		Quantity:          s.Quantity,
		LowStockThreshold: s.LowStockThreshold,
		LowStock:          s.LowStock(),
		ExpiryDate:        s.ExpiryDate,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.svc.ListStock(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]stockResponse, len(stocks))
	for i, s := range stocks {
		out[i] = toStock(s)
	}

	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "productID")
	if !ok {
		return
	}

	s, err := h.svc.StockLevel(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toStock(s))
}

func (h *Handler) batches(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "productID")
	if !ok {
		return
	}

	bs, err := h.svc.ActiveBatches(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]batchResponse, len(bs))
	for i, b := range bs {
		out[i] = batchResponse{
			ID:         b.ID,
			Number:     b.Number,
			CostPrice:  b.CostPrice,
			ExpiryDate: b.ExpiryDate,
			Quantity:   b.Quantity,
			CreatedAt:  b.CreatedAt,
		}
	}

	respond.JSON(w, http.StatusOK, out)
}

type settingsRequest struct {
	LowStockThreshold int        `json:"low_stock_threshold"`
	ExpiryDate        *time.Time `json:"expiry_date"`
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "productID")
	if !ok {
		return
	}

	var req settingsRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	err := h.svc.UpdateSettings(r.Context(), id, ledger.StockSettings{
		LowStockThreshold: req.LowStockThreshold,
		ExpiryDate:        req.ExpiryDate,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	drift, err := h.reconciler.Run(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]driftResponse, len(drift))
	for i, d := range drift {
		out[i] = driftResponse{ProductID: d.ProductID, ProductName: d.ProductName, Stock: d.Stock, BatchTotal: d.BatchTotal}
	}

	respond.JSON(w, http.StatusOK, map[string]any{"drift": out})
}
