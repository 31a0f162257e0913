package purchase

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is the record of one intake of a product.
type Purchase struct {
	ID            int64
	ProductID     int64
	ProductName   string // Loaded via JOIN
	SupplierID    *int64
	SupplierName  string // Loaded via JOIN
	Quantity      int
	UnitCost      decimal.Decimal
	InvoiceNumber string
	BatchNumber   string
	ExpiryDate    *time.Time
	BatchID       *int64 // Batch the purchase was received into; nil once that batch is gone
	PurchasedAt   time.Time
	UpdatedAt     *time.Time
}

// Total returns quantity × unit cost.
func (p *Purchase) Total() decimal.Decimal {
	return p.UnitCost.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

var (
	ErrNotFound        = errors.New("purchase not found")
	ErrInvalidInput    = errors.New("purchase: invalid input")
	ErrInvalidUnitCost = errors.New("purchase: unit cost must be at least 0.01")
)

// MinUnitCost is the smallest accepted unit cost.
var MinUnitCost = decimal.New(1, -2)
