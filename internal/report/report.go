package report

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardWindow is how far back the dashboard sales figures reach.
const DashboardWindow = 7 * 24 * time.Hour

// Dashboard holds the headline figures of the store.
type Dashboard struct {
	TotalProducts    int             `json:"total_products"`
	TotalStockValue  decimal.Decimal `json:"total_stock_value"`
	LowStockCount    int             `json:"low_stock_count"`
	RecentRevenue    decimal.Decimal `json:"recent_revenue"`
	RecentSalesCount int             `json:"recent_sales_count"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// LowStockItem is a product with some, but not much, quantity left.
type LowStockItem struct {
	ProductID         int64      `json:"product_id"`
	Name              string     `json:"name"`
	CategoryName      string     `json:"category_name"`
	Quantity          int        `json:"quantity"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
}

// Day is one row of the daily revenue report.
type Day struct {
	Day     time.Time       `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Items   int             `json:"items"`
}

var ErrInvalidRange = errors.New("report: start must be before end")
