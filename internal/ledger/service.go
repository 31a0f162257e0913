package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	GetStock(ctx context.Context, productID int64) (*Stock, error)
	ListStock(ctx context.Context) ([]*Stock, error)
	ListActiveBatches(ctx context.Context, productID int64) ([]*Batch, error)
	UpdateStockSettings(ctx context.Context, productID int64, settings StockSettings) error
	ListDrift(ctx context.Context) ([]Drift, error)
}

// StockSettings are the operator-maintained fields of a stock row.
type StockSettings struct {
	LowStockThreshold int
	ExpiryDate        *time.Time
}

// ErrInvalidThreshold indicates a negative low-stock threshold.
var ErrInvalidThreshold = errors.New("ledger: low stock threshold must be >= 0")

// Service exposes unlocked reads over the ledger. Mutations go through the purchase and sale
// processors, which drive Deduct, Receive, Increment and Release inside their own transactions.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) StockLevel(ctx context.Context, productID int64) (*Stock, error) {
	return s.repo.GetStock(ctx, productID)
}

func (s *Service) ListStock(ctx context.Context) ([]*Stock, error) {
	return s.repo.ListStock(ctx)
}

// ActiveBatches lists batches with quantity on hand in the order a sale would consume them.
func (s *Service) ActiveBatches(ctx context.Context, productID int64) ([]*Batch, error) {
	return s.repo.ListActiveBatches(ctx, productID)
}

func (s *Service) UpdateSettings(ctx context.Context, productID int64, settings StockSettings) error {
	if settings.LowStockThreshold < 0 {
		return ErrInvalidThreshold
	}

	return s.repo.UpdateStockSettings(ctx, productID, settings)
}

// Reconcile reports every product whose stock quantity differs from the sum of its active batches.
// Drift is logged, never corrected here.
func (s *Service) Reconcile(ctx context.Context) ([]Drift, error) {
	drift, err := s.repo.ListDrift(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing drift: %w", err)
	}

	for _, d := range drift {
		slog.Error("ledger drift detected",
			"product_id", d.ProductID,
			"product", d.ProductName,
			"stock", d.Stock,
			"batch_total", d.BatchTotal,
		)
	}

	return drift, nil
}
