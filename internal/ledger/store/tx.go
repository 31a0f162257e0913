package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyurdhanani/store-management-project/internal/database"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

// Tx implements ledger.Tx on a database transaction. Tx is exported so the purchase and sale
// stores can run their own statements on the same transaction.
type Tx struct {
	Tx *sql.Tx
}

func (t *Tx) Commit() error {
	if err := t.Tx.Commit(); err != nil {
		return database.Classify(err)
	}

	return nil
}

func (t *Tx) Rollback() error {
	return t.Tx.Rollback()
}

func (t *Tx) CreateStock(ctx context.Context, productID int64, threshold int) error {
	query := `
		INSERT INTO stock (product_id, quantity, low_stock_threshold)
		VALUES ($1, 0, $2)
		ON CONFLICT (product_id) DO NOTHING
	`

	if _, err := t.Tx.ExecContext(ctx, query, productID, threshold); err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("product %d: %w", productID, ledger.ErrMissingLedgerRecord)
		}

		return wrap("creating stock", err)
	}

	return nil
}

func (t *Tx) LockStock(ctx context.Context, productID int64) (ledger.Stock, error) {
	st, err := scanStock(t.Tx.QueryRowContext(ctx, selectStock+` WHERE s.product_id = $1 FOR UPDATE OF s`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Stock{}, ledger.ErrMissingLedgerRecord
		}

		return ledger.Stock{}, wrap("locking stock", err)
	}

	return *st, nil
}

func (t *Tx) AddStock(ctx context.Context, productID int64, delta int) error {
	query := `UPDATE stock SET quantity = quantity + $1, updated_at = NOW() WHERE product_id = $2`

	res, err := t.Tx.ExecContext(ctx, query, delta, productID)
	if err != nil {
		if database.IsCheckViolation(err) {
			return fmt.Errorf("stock of product %d would go negative: %w", productID, ledger.ErrInconsistentState)
		}

		return wrap("adjusting stock", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrMissingLedgerRecord
	}

	return nil
}

func (t *Tx) LockActiveBatches(ctx context.Context, productID int64) ([]ledger.Batch, error) {
	rows, err := t.Tx.QueryContext(ctx, selectBatch+` WHERE product_id = $1 AND quantity > 0`+fefoOrder+` FOR UPDATE`, productID)
	if err != nil {
		return nil, wrap("locking batches", err)
	}
	defer rows.Close()

	var out []ledger.Batch

	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}

		out = append(out, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, wrap("iterating batch rows", err)
	}

	return out, nil
}

func (t *Tx) LockBatch(ctx context.Context, batchID int64) (ledger.Batch, error) {
	return t.lockBatch(ctx, selectBatch+` WHERE id = $1 FOR UPDATE`, batchID)
}

func (t *Tx) LockBatchByNumber(ctx context.Context, productID int64, number string) (ledger.Batch, error) {
	return t.lockBatch(ctx, selectBatch+` WHERE product_id = $1 AND batch_number = $2 FOR UPDATE`, productID, number)
}

func (t *Tx) lockBatch(ctx context.Context, query string, args ...any) (ledger.Batch, error) {
	b, err := scanBatch(t.Tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Batch{}, ledger.ErrMissingLedgerRecord
		}

		return ledger.Batch{}, wrap("locking batch", err)
	}

	return *b, nil
}

func (t *Tx) CreateBatch(ctx context.Context, b *ledger.Batch) error {
	query := `
		INSERT INTO batches (product_id, batch_number, cost_price, expiry_date, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := t.Tx.QueryRowContext(ctx, query,
		b.ProductID,
		b.Number,
		b.CostPrice,
		b.ExpiryDate,
		b.Quantity,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("batch %s of product %d: %w", b.Number, b.ProductID, ledger.ErrDuplicateBatchNumber)
		}

		return wrap("creating batch", err)
	}

	return nil
}

func (t *Tx) UpdateBatch(ctx context.Context, b ledger.Batch) error {
	query := `
		UPDATE batches
		SET batch_number = $1, cost_price = $2, expiry_date = $3
		WHERE id = $4
	`

	res, err := t.Tx.ExecContext(ctx, query, b.Number, b.CostPrice, b.ExpiryDate, b.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("batch %s: %w", b.Number, ledger.ErrDuplicateBatchNumber)
		}

		return wrap("updating batch", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrMissingLedgerRecord
	}

	return nil
}

func (t *Tx) AddBatch(ctx context.Context, batchID int64, delta int) error {
	res, err := t.Tx.ExecContext(ctx, `UPDATE batches SET quantity = quantity + $1 WHERE id = $2`, delta, batchID)
	if err != nil {
		if database.IsCheckViolation(err) {
			return fmt.Errorf("batch %d would go negative: %w", batchID, ledger.ErrInconsistentState)
		}

		return wrap("adjusting batch", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrMissingLedgerRecord
	}

	return nil
}

func (t *Tx) DeleteBatch(ctx context.Context, batchID int64) error {
	res, err := t.Tx.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, batchID)
	if err != nil {
		return wrap("deleting batch", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrMissingLedgerRecord
	}

	return nil
}
