package matching

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/keyurdhanani/store-management-project/internal/http/respond"
	"github.com/keyurdhanani/store-management-project/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Get("/", h.list)
	r.Post("/", h.learn)
	r.Delete("/{id}", h.forget)
}

type suggestResponse struct {
	RawDescription string `json:"raw_description"`
	ProductID      *int64 `json:"product_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		respond.BadRequest(w, "raw_description query parameter is required")
		return
	}

	productID, ok, err := h.svc.Suggest(r.Context(), rawDesc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := suggestResponse{RawDescription: rawDesc}
	if ok {
		resp.ProductID = &productID
	}

	respond.JSON(w, http.StatusOK, resp)
}

type mappingResponse struct {
	ID          int64     `json:"id"`
	RawPattern  string    `json:"raw_pattern"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(m *matching.Mapping) mappingResponse {
	return mappingResponse{
		ID:          m.ID,
		RawPattern:  m.RawPattern,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		CreatedAt:   m.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ms, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]mappingResponse, len(ms))
	for i, m := range ms {
		out[i] = toResponse(m)
	}

	respond.JSON(w, http.StatusOK, out)
}

type learnRequest struct {
	RawPattern string `json:"raw_pattern"`
	ProductID  int64  `json:"product_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if req.RawPattern == "" || req.ProductID <= 0 {
		respond.BadRequest(w, "raw_pattern and product_id are required")
		return
	}

	m, err := h.svc.Learn(r.Context(), req.RawPattern, req.ProductID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Forget(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
