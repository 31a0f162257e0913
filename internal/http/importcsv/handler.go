package importcsv

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/encoding"
	purchaseHandler "github.com/keyurdhanani/store-management-project/internal/http/purchase"
	"github.com/keyurdhanani/store-management-project/internal/http/respond"
	"github.com/keyurdhanani/store-management-project/internal/importer"
	"github.com/keyurdhanani/store-management-project/internal/importer/supplier"
)

const maxUploadSize = 10 << 20

type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Handler struct {
	importSvc *importer.Service
	reports   Invalidator
}

func NewHandler(importSvc *importer.Service, reports Invalidator) *Handler {
	return &Handler{importSvc: importSvc, reports: reports}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type rowResponse struct {
	Line          int             `json:"line"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
}

type importResponse struct {
	ID        uuid.UUID                  `json:"id"`
	Profile   string                     `json:"profile"`
	Charset   encoding.Charset           `json:"charset"`
	Imported  int                        `json:"imported"`
	Purchases []purchaseHandler.Response `json:"purchases"`
	Unmatched []rowResponse              `json:"unmatched"`
	Skipped   []supplier.RowError        `json:"skipped"`
	Failed    []supplier.RowError        `json:"failed"`
}

// importCSV takes a multipart form with the supplier file in "file" and, optionally,
// "supplier_id", "invoice_number" and "mappings" (a JSON object of description to product id).
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	params := importer.Params{InvoiceNumber: r.FormValue("invoice_number")}

	if s := r.FormValue("supplier_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			respond.BadRequest(w, "invalid supplier_id")
			return
		}

		params.SupplierID = &id
	}

	if s := r.FormValue("mappings"); s != "" {
		if err := json.Unmarshal([]byte(s), &params.Mappings); err != nil {
			respond.BadRequest(w, "invalid mappings: "+err.Error())
			return
		}
	}

	res, err := h.importSvc.Import(r.Context(), params, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(res.Recorded) > 0 {
		h.reports.Invalidate(r.Context())
	}

	respond.JSON(w, http.StatusCreated, toResponse(res))
}

func toResponse(res *importer.Result) importResponse {
	resp := importResponse{
		ID:        res.ID,
		Profile:   res.Profile,
		Charset:   res.Charset,
		Imported:  len(res.Recorded),
		Purchases: purchaseHandler.ToResponseList(res.Recorded),
		Unmatched: make([]rowResponse, len(res.Unmatched)),
		Skipped:   nonNil(res.Skipped),
		Failed:    nonNil(res.Failed),
	}

	for i, row := range res.Unmatched {
		resp.Unmatched[i] = rowResponse{
			Line:          row.Line,
			Description:   row.Description,
			Quantity:      row.Quantity,
			UnitCost:      row.UnitCost,
			BatchNumber:   row.BatchNumber,
			ExpiryDate:    row.ExpiryDate,
			InvoiceNumber: row.InvoiceNumber,
		}
	}

	return resp
}

func nonNil(rows []supplier.RowError) []supplier.RowError {
	if rows == nil {
		return []supplier.RowError{}
	}

	return rows
}
