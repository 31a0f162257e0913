package ledger

import (
	"context"
	"fmt"
)

// Deduct takes quantity units of a product out of its batches in FEFO order and debits the
// aggregate stock by the same amount. It must run inside the caller's transaction: the stock row
// is locked first, then every active batch, and nothing is written unless the whole quantity is
// covered.
func Deduct(ctx context.Context, tx Tx, productID int64, quantity int) ([]Deduction, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	stock, err := tx.LockStock(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("locking stock: %w", err)
	}

	if stock.Quantity < quantity {
		return nil, &InsufficientStockError{
			ProductID:   productID,
			ProductName: stock.ProductName,
			Requested:   quantity,
			Available:   stock.Quantity,
		}
	}

	batches, err := tx.LockActiveBatches(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("locking batches: %w", err)
	}

	remaining := quantity
	deductions := make([]Deduction, 0, 1)

	for _, b := range batches {
		if remaining == 0 {
			break
		}

		take := min(remaining, b.Quantity)
		if take <= 0 {
			continue
		}

		if err := tx.AddBatch(ctx, b.ID, -take); err != nil {
			return nil, fmt.Errorf("debiting batch %s: %w", b.Number, err)
		}

		deductions = append(deductions, Deduction{
			BatchID:     b.ID,
			BatchNumber: b.Number,
			Quantity:    take,
			UnitCost:    b.CostPrice,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, &InconsistentStateError{
			ProductID: productID,
			Stock:     stock.Quantity,
			Requested: quantity,
			Remaining: remaining,
		}
	}

	if err := tx.AddStock(ctx, productID, -quantity); err != nil {
		return nil, fmt.Errorf("debiting stock: %w", err)
	}

	return deductions, nil
}
