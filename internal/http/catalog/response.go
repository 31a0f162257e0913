package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/catalog"
)

type productResponse struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	CategoryID        *int64          `json:"category_id,omitempty"`
	CategoryName      string          `json:"category_name,omitempty"`
	BasePrice         decimal.Decimal `json:"base_price"`
	MRP               decimal.Decimal `json:"mrp"`
	SupplierCost      decimal.Decimal `json:"supplier_cost"`
	Description       string          `json:"description,omitempty"`
	Active            bool            `json:"active"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
}

type categoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type supplierResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ContactInfo string    `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProduct(p *catalog.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		Name:              p.Name,
		CategoryID:        p.CategoryID,
		CategoryName:      p.CategoryName,
		BasePrice:         p.BasePrice,
		MRP:               p.MRP,
		SupplierCost:      p.SupplierCost,
		Description:       p.Description,
		Active:            p.Active,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toProducts(ps []*catalog.Product) []productResponse {
	out := make([]productResponse, len(ps))
	for i, p := range ps {
		out[i] = toProduct(p)
	}

	return out
}

func toCategory(c *catalog.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

func toSupplier(s *catalog.Supplier) supplierResponse {
	return supplierResponse{ID: s.ID, Name: s.Name, ContactInfo: s.ContactInfo, CreatedAt: s.CreatedAt}
}
