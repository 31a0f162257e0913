package ledger

import (
	"context"
	"errors"
	"fmt"
)

// EnsureStock creates a zero-quantity stock row for the product if none exists.
func EnsureStock(ctx context.Context, tx Tx, productID int64) error {
	if err := tx.CreateStock(ctx, productID, DefaultLowStockThreshold); err != nil {
		return fmt.Errorf("ensuring stock: %w", err)
	}

	return nil
}

// Increment locks the product's stock row and applies delta atomically.
// A negative delta larger than the quantity on hand is refused rather than clamped.
func Increment(ctx context.Context, tx Tx, productID int64, delta int) (Stock, error) {
	stock, err := tx.LockStock(ctx, productID)
	if err != nil {
		return Stock{}, fmt.Errorf("locking stock: %w", err)
	}

	if delta == 0 {
		return stock, nil
	}

	if stock.Quantity+delta < 0 {
		return Stock{}, &InsufficientStockError{
			ProductID:   productID,
			ProductName: stock.ProductName,
			Requested:   -delta,
			Available:   stock.Quantity,
		}
	}

	if err := tx.AddStock(ctx, productID, delta); err != nil {
		return Stock{}, fmt.Errorf("adjusting stock: %w", err)
	}

	stock.Quantity += delta

	return stock, nil
}

// Release removes up to quantity units from the product's stock on a reversal path.
// The result floors at zero and a missing stock row is treated as already reconciled.
// It returns the number of units actually removed.
func Release(ctx context.Context, tx Tx, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, nil
	}

	stock, err := tx.LockStock(ctx, productID)
	if errors.Is(err, ErrMissingLedgerRecord) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("locking stock: %w", err)
	}

	removed := min(quantity, stock.Quantity)
	if removed <= 0 {
		return 0, nil
	}

	if err := tx.AddStock(ctx, productID, -removed); err != nil {
		return 0, fmt.Errorf("releasing stock: %w", err)
	}

	return removed, nil
}
