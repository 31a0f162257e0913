package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is used for stock rows created without an explicit threshold.
const DefaultLowStockThreshold = 10

// Stock is the aggregate quantity on hand for one product.
type Stock struct {
	ProductID         int64
	ProductName       string // Loaded via JOIN
	Quantity          int
	LowStockThreshold int
	ExpiryDate        *time.Time
	UpdatedAt         *time.Time
}

// LowStock reports whether some units remain but no more than the alert threshold. Sold-out
// stock is not low.
func (s Stock) LowStock() bool {
	return s.Quantity > 0 && s.Quantity <= s.LowStockThreshold
}

// Batch is a lot of a product received at one cost and, optionally, one expiry date.
type Batch struct {
	ID         int64
	ProductID  int64
	Number     string
	CostPrice  decimal.Decimal
	ExpiryDate *time.Time
	Quantity   int
	CreatedAt  time.Time
}

// Deduction records how much of a sale was taken from one batch and at what cost.
type Deduction struct {
	BatchID     int64
	BatchNumber string
	Quantity    int
	UnitCost    decimal.Decimal
}

// Cost returns quantity × unit cost.
func (d Deduction) Cost() decimal.Decimal {
	return d.UnitCost.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// TotalCost sums the cost of all deductions.
func TotalCost(ds []Deduction) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d.Cost())
	}

	return total
}

// BatchSpec identifies the batch a purchase is received into.
type BatchSpec struct {
	Number     string
	CostPrice  decimal.Decimal
	ExpiryDate *time.Time
}

// Drift describes a product whose aggregate stock disagrees with its batches.
type Drift struct {
	ProductID   int64
	ProductName string
	Stock       int
	BatchTotal  int
}

// FEFOLess orders batches by expiry (absent expiry last), then creation time, then id.
func FEFOLess(a, b Batch) bool {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate != nil:
		return false
	case a.ExpiryDate != nil && b.ExpiryDate == nil:
		return true
	case a.ExpiryDate != nil && b.ExpiryDate != nil && !a.ExpiryDate.Equal(*b.ExpiryDate):
		return a.ExpiryDate.Before(*b.ExpiryDate)
	}

	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}

	return a.ID < b.ID
}

// Tx is the set of row-level operations a ledger mutation needs inside one store transaction.
// Lock* methods take exclusive row locks held until commit or rollback.
// Add* methods apply an atomic in-place increment (quantity = quantity + delta).
type Tx interface {
	CreateStock(ctx context.Context, productID int64, threshold int) error
	LockStock(ctx context.Context, productID int64) (Stock, error)
	AddStock(ctx context.Context, productID int64, delta int) error

	LockActiveBatches(ctx context.Context, productID int64) ([]Batch, error)
	LockBatch(ctx context.Context, batchID int64) (Batch, error)
	LockBatchByNumber(ctx context.Context, productID int64, number string) (Batch, error)
	CreateBatch(ctx context.Context, b *Batch) error
	UpdateBatch(ctx context.Context, b Batch) error
	AddBatch(ctx context.Context, batchID int64, delta int) error
	DeleteBatch(ctx context.Context, batchID int64) error
}
