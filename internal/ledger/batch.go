package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Receive adds quantity units to the product's batch with spec.Number, creating the batch when the
// product has none with that number. Cost and expiry of an existing batch are refreshed from spec.
// The stock row must already be locked by the caller.
func Receive(ctx context.Context, tx Tx, productID int64, spec BatchSpec, quantity int) (Batch, error) {
	if quantity <= 0 {
		return Batch{}, ErrInvalidQuantity
	}

	b, err := tx.LockBatchByNumber(ctx, productID, spec.Number)
	if errors.Is(err, ErrMissingLedgerRecord) {
		b = Batch{
			ProductID:  productID,
			Number:     spec.Number,
			CostPrice:  spec.CostPrice,
			ExpiryDate: spec.ExpiryDate,
			Quantity:   quantity,
		}
		if err := tx.CreateBatch(ctx, &b); err != nil {
			return Batch{}, fmt.Errorf("creating batch: %w", err)
		}

		return b, nil
	}

	if err != nil {
		return Batch{}, fmt.Errorf("locking batch: %w", err)
	}

	b.CostPrice = spec.CostPrice
	b.ExpiryDate = spec.ExpiryDate

	if err := tx.UpdateBatch(ctx, b); err != nil {
		return Batch{}, fmt.Errorf("updating batch: %w", err)
	}

	if err := tx.AddBatch(ctx, b.ID, quantity); err != nil {
		return Batch{}, fmt.Errorf("crediting batch: %w", err)
	}

	b.Quantity += quantity

	return b, nil
}

// Withdraw removes up to quantity units from a locked batch and deletes the batch once nothing is
// left in it. It returns the number of units removed and whether the batch row is gone.
func Withdraw(ctx context.Context, tx Tx, b Batch, quantity int) (int, bool, error) {
	removed := min(max(quantity, 0), b.Quantity)

	if b.Quantity-removed <= 0 {
		if err := tx.DeleteBatch(ctx, b.ID); err != nil {
			return 0, false, fmt.Errorf("deleting batch: %w", err)
		}

		return removed, true, nil
	}

	if removed == 0 {
		return 0, false, nil
	}

	if err := tx.AddBatch(ctx, b.ID, -removed); err != nil {
		return 0, false, fmt.Errorf("debiting batch: %w", err)
	}

	return removed, false, nil
}
