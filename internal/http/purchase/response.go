package purchase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/purchase"
)

type Response struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	SupplierID    *int64          `json:"supplier_id,omitempty"`
	SupplierName  string          `json:"supplier_name,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Total         decimal.Decimal `json:"total"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	BatchNumber   string          `json:"batch_number"`
	BatchID       *int64          `json:"batch_id,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	PurchasedAt   time.Time       `json:"purchased_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

func ToResponse(p *purchase.Purchase) Response {
	return Response{
		ID:            p.ID,
		ProductID:     p.ProductID,
		ProductName:   p.ProductName,
		SupplierID:    p.SupplierID,
		SupplierName:  p.SupplierName,
		Quantity:      p.Quantity,
		UnitCost:      p.UnitCost,
		Total:         p.Total(),
		InvoiceNumber: p.InvoiceNumber,
		BatchNumber:   p.BatchNumber,
		BatchID:       p.BatchID,
		ExpiryDate:    p.ExpiryDate,
		PurchasedAt:   p.PurchasedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ToResponseList(ps []*purchase.Purchase) []Response {
	out := make([]Response, len(ps))
	for i, p := range ps {
		out[i] = ToResponse(p)
	}

	return out
}
