package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/keyurdhanani/store-management-project/internal/http/respond"
	"github.com/keyurdhanani/store-management-project/internal/report"
)

type Handler struct {
	svc *report.Service
	now func() time.Time
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/low-stock", h.lowStock)
	r.Get("/daily", h.daily)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, d)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.LowStock(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if items == nil {
		items = []report.LowStockItem{}
	}

	respond.JSON(w, http.StatusOK, items)
}

// daily defaults to the last 30 days; "to" is inclusive, so the range ends the day after it.
func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	today := h.now().UTC().Truncate(24 * time.Hour)
	from, to := today.AddDate(0, 0, -29), today

	for name, dst := range map[string]*time.Time{"from": &from, "to": &to} {
		s := r.URL.Query().Get(name)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.BadRequest(w, "invalid "+name+", expected YYYY-MM-DD")
			return
		}

		*dst = t
	}

	days, err := h.svc.Daily(r.Context(), from, to.AddDate(0, 0, 1))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if days == nil {
		days = []report.Day{}
	}

	respond.JSON(w, http.StatusOK, days)
}
