package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/catalog"
	"github.com/keyurdhanani/store-management-project/internal/http/respond"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ProductRoutes(r chi.Router) {
	r.Post("/", h.createProduct)
	r.Get("/", h.listProducts)
	r.Get("/{id}", h.getProduct)
	r.Put("/{id}", h.updateProduct)
	r.Post("/{id}/deactivate", h.deactivate)
	r.Post("/{id}/activate", h.activate)
	r.Delete("/{id}", h.deleteProduct)
}

func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Post("/", h.createCategory)
	r.Get("/", h.listCategories)
	r.Put("/{id}", h.updateCategory)
	r.Delete("/{id}", h.deleteCategory)
}

func (h *Handler) SupplierRoutes(r chi.Router) {
	r.Post("/", h.createSupplier)
	r.Get("/", h.listSuppliers)
	r.Put("/{id}", h.updateSupplier)
	r.Delete("/{id}", h.deleteSupplier)
}

type productRequest struct {
	Name         string          `json:"name"`
	CategoryID   *int64          `json:"category_id"`
	BasePrice    decimal.Decimal `json:"base_price"`
	MRP          decimal.Decimal `json:"mrp"`
	SupplierCost decimal.Decimal `json:"supplier_cost"`
	Description  string          `json:"description"`
}

func (req productRequest) params() catalog.ProductParams {
	return catalog.ProductParams{
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		BasePrice:    req.BasePrice,
		MRP:          req.MRP,
		SupplierCost: req.SupplierCost,
		Description:  req.Description,
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toProduct(p))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.ProductFilter{
		Search:          q.Get("search"),
		IncludeInactive: q.Get("include_inactive") == "true",
	}

	if s := q.Get("category_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			respond.BadRequest(w, "invalid category_id")
			return
		}

		filter.CategoryID = &id
	}

	ps, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProducts(ps))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProduct(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	var req productRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateProduct(r.Context(), id, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProduct(p))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.svc.Deactivate)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.svc.Activate)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.svc.DeleteProduct)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.CreateCategory(r.Context(), catalog.CategoryParams{Name: req.Name, Description: req.Description})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toCategory(c))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.ListCategories(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]categoryResponse, len(cs))
	for i, c := range cs {
		out[i] = toCategory(c)
	}

	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	var req categoryRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.UpdateCategory(r.Context(), id, catalog.CategoryParams{Name: req.Name, Description: req.Description})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCategory(c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.svc.DeleteCategory)
}

type supplierRequest struct {
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	s, err := h.svc.CreateSupplier(r.Context(), catalog.SupplierParams{Name: req.Name, ContactInfo: req.ContactInfo})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSupplier(s))
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	ss, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]supplierResponse, len(ss))
	for i, s := range ss {
		out[i] = toSupplier(s)
	}

	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	var req supplierRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	s, err := h.svc.UpdateSupplier(r.Context(), id, catalog.SupplierParams{Name: req.Name, ContactInfo: req.ContactInfo})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSupplier(s))
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.svc.DeleteSupplier)
}

func (h *Handler) noContent(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) error) {
	id, ok := respond.ID(w, r, "id")
	if !ok {
		return
	}

	if err := op(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
