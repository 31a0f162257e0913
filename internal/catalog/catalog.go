package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item. Its stock row is created together with it.
type Product struct {
	ID           int64
	Name         string
	CategoryID   *int64
	CategoryName string // Loaded via JOIN
	BasePrice    decimal.Decimal
	MRP          decimal.Decimal
	SupplierCost decimal.Decimal
	Description  string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time

	// Loaded from the stock row.
	Quantity          int
	LowStockThreshold int
}

type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

type Supplier struct {
	ID          int64
	Name        string
	ContactInfo string
	CreatedAt   time.Time
}

var (
	ErrNotFound      = errors.New("catalog: not found")
	ErrDuplicateName = errors.New("catalog: name already in use")
	ErrProductInUse  = errors.New("catalog: product is referenced by purchases or sales")
	ErrInvalidInput  = errors.New("catalog: invalid input")
	ErrInvalidPrice  = errors.New("catalog: invalid price")
)
