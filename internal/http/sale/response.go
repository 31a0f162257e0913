package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/sale"
)

type invoiceResponse struct {
	ID             int64           `json:"id"`
	Number         string          `json:"invoice_number"`
	SoldAt         time.Time       `json:"sold_at"`
	CustomerName   string          `json:"customer_name,omitempty"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	Items          []itemResponse  `json:"items,omitempty"`
}

type itemResponse struct {
	ProductID   int64                `json:"product_id"`
	ProductName string               `json:"product_name,omitempty"`
	Quantity    int                  `json:"quantity"`
	UnitPrice   decimal.Decimal      `json:"unit_price"`
	UnitCost    decimal.Decimal      `json:"unit_cost"`
	BatchID     *int64               `json:"batch_id,omitempty"`
	LineTotal   decimal.Decimal      `json:"line_total"`
	CostTotal   decimal.Decimal      `json:"cost_total"`
	Profit      decimal.Decimal      `json:"profit"`
	Allocations []allocationResponse `json:"allocations,omitempty"`
}

type allocationResponse struct {
	BatchID     int64           `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

func toResponse(inv *sale.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		SoldAt:         inv.SoldAt,
		CustomerName:   inv.CustomerName,
		DiscountRate:   inv.DiscountRate,
		TaxRate:        inv.TaxRate,
		Subtotal:       inv.Subtotal,
		DiscountAmount: inv.DiscountAmount,
		TaxAmount:      inv.TaxAmount,
		Total:          inv.Total,
	}

	for _, it := range inv.Items {
		item := itemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			UnitCost:    it.UnitCost,
			BatchID:     it.BatchID,
			LineTotal:   it.LineTotal,
			CostTotal:   it.CostTotal,
			Profit:      it.Profit(),
		}

		for _, a := range it.Allocations {
			item.Allocations = append(item.Allocations, allocationResponse{
				BatchID:     a.BatchID,
				BatchNumber: a.BatchNumber,
				Quantity:    a.Quantity,
				UnitCost:    a.UnitCost,
			})
		}

		resp.Items = append(resp.Items, item)
	}

	return resp
}
