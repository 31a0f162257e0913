package sale

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

// Invoice is one customer transaction. It is never updated after creation.
type Invoice struct {
	ID             int64
	Number         string
	SoldAt         time.Time
	CustomerName   string
	DiscountRate   decimal.Decimal
	TaxRate        decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	Items          []*Item
}

// Item is one product line of an invoice.
//
// UnitCost and BatchID come from the first batch the line was taken from. When a line spans
// several batches, Allocations holds every batch with its own cost and CostTotal is their sum.
type Item struct {
	ID          int64
	InvoiceID   int64
	ProductID   int64
	ProductName string // Loaded via JOIN
	Quantity    int
	UnitPrice   decimal.Decimal
	UnitCost    decimal.Decimal
	BatchID     *int64
	CostTotal   decimal.Decimal
	LineTotal   decimal.Decimal
	Allocations []ledger.Deduction
}

// Profit returns the line revenue minus its cost.
func (i *Item) Profit() decimal.Decimal {
	return i.LineTotal.Sub(i.CostTotal)
}

// DailySummary aggregates sale lines for one calendar day.
type DailySummary struct {
	Day     time.Time
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Profit  decimal.Decimal
	Items   int
}

var (
	ErrNotFound     = errors.New("sale invoice not found")
	ErrInvalidInput = errors.New("sale: invalid input")
	ErrInvalidRate  = errors.New("sale: rates must be between 0 and 100")
	ErrInvalidPrice = errors.New("sale: unit price must not be negative")
)
