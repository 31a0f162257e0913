package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keyurdhanani/store-management-project/internal/database"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
}

func New(db *sql.DB, lockTimeout time.Duration) *Store {
	return &Store{db: db, lockTimeout: lockTimeout}
}

// Begin opens a ledger transaction. Callers embed the returned Tx in their own tx types.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	sqlTx, err := database.BeginLedgerTx(ctx, s.db, s.lockTimeout)
	if err != nil {
		return nil, err
	}

	return &Tx{Tx: sqlTx}, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: product_id, name, quantity, low_stock_threshold, expiry_date, updated_at
func scanStock(s scanner) (*ledger.Stock, error) {
	var st ledger.Stock
	if err := s.Scan(&st.ProductID, &st.ProductName, &st.Quantity, &st.LowStockThreshold, &st.ExpiryDate, &st.UpdatedAt); err != nil {
		return nil, err
	}

	return &st, nil
}

// Expected column order: id, product_id, batch_number, cost_price, expiry_date, quantity, created_at
func scanBatch(s scanner) (*ledger.Batch, error) {
	var b ledger.Batch
	if err := s.Scan(&b.ID, &b.ProductID, &b.Number, &b.CostPrice, &b.ExpiryDate, &b.Quantity, &b.CreatedAt); err != nil {
		return nil, err
	}

	return &b, nil
}

const (
	selectStock = `
		SELECT s.product_id, p.name, s.quantity, s.low_stock_threshold, s.expiry_date, s.updated_at
		FROM stock s
		JOIN products p ON p.id = s.product_id`

	selectBatch = `
		SELECT id, product_id, batch_number, cost_price, expiry_date, quantity, created_at
		FROM batches`

	fefoOrder = ` ORDER BY expiry_date ASC NULLS LAST, created_at ASC, id ASC`
)

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, database.Classify(err))
}

func (s *Store) GetStock(ctx context.Context, productID int64) (*ledger.Stock, error) {
	st, err := scanStock(s.db.QueryRowContext(ctx, selectStock+` WHERE s.product_id = $1`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrMissingLedgerRecord
		}

		return nil, wrap("getting stock", err)
	}

	return st, nil
}

func (s *Store) ListStock(ctx context.Context) ([]*ledger.Stock, error) {
	rows, err := s.db.QueryContext(ctx, selectStock+` WHERE p.active ORDER BY p.name ASC`)
	if err != nil {
		return nil, wrap("listing stock", err)
	}
	defer rows.Close()

	var out []*ledger.Stock

	for rows.Next() {
		st, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock: %w", err)
		}

		out = append(out, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock rows: %w", err)
	}

	return out, nil
}

// Availability returns the unlocked stock rows of the given products. Products without a stock
// row are absent from the result.
func (s *Store) Availability(ctx context.Context, productIDs []int64) (map[int64]ledger.Stock, error) {
	rows, err := s.db.QueryContext(ctx, selectStock+` WHERE s.product_id = ANY($1)`, productIDs)
	if err != nil {
		return nil, wrap("reading availability", err)
	}
	defer rows.Close()

	out := make(map[int64]ledger.Stock, len(productIDs))

	for rows.Next() {
		st, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock: %w", err)
		}

		out[st.ProductID] = *st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock rows: %w", err)
	}

	return out, nil
}

func (s *Store) ListActiveBatches(ctx context.Context, productID int64) ([]*ledger.Batch, error) {
	rows, err := s.db.QueryContext(ctx, selectBatch+` WHERE product_id = $1 AND quantity > 0`+fefoOrder, productID)
	if err != nil {
		return nil, wrap("listing batches", err)
	}
	defer rows.Close()

	var out []*ledger.Batch

	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}

		out = append(out, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch rows: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateStockSettings(ctx context.Context, productID int64, settings ledger.StockSettings) error {
	query := `
		UPDATE stock
		SET low_stock_threshold = $1, expiry_date = $2, updated_at = NOW()
		WHERE product_id = $3
	`

	res, err := s.db.ExecContext(ctx, query, settings.LowStockThreshold, settings.ExpiryDate, productID)
	if err != nil {
		return wrap("updating stock settings", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrMissingLedgerRecord
	}

	return nil
}

func (s *Store) ListDrift(ctx context.Context) ([]ledger.Drift, error) {
	query := `
		SELECT s.product_id, p.name, s.quantity, COALESCE(b.total, 0)
		FROM stock s
		JOIN products p ON p.id = s.product_id
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS total
			FROM batches
			WHERE quantity > 0
			GROUP BY product_id
		) b ON b.product_id = s.product_id
		WHERE s.quantity <> COALESCE(b.total, 0)
		ORDER BY s.product_id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap("listing drift", err)
	}
	defer rows.Close()

	var out []ledger.Drift

	for rows.Next() {
		var d ledger.Drift
		if err := rows.Scan(&d.ProductID, &d.ProductName, &d.Stock, &d.BatchTotal); err != nil {
			return nil, fmt.Errorf("scanning drift: %w", err)
		}

		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drift rows: %w", err)
	}

	return out, nil
}
