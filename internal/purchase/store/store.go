package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyurdhanani/store-management-project/internal/database"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
	ledgerStore "github.com/keyurdhanani/store-management-project/internal/ledger/store"
	"github.com/keyurdhanani/store-management-project/internal/purchase"
)

type Store struct {
	db     *sql.DB
	ledger *ledgerStore.Store
}

func New(db *sql.DB, ledger *ledgerStore.Store) *Store {
	return &Store{db: db, ledger: ledger}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, product_id, product_name, supplier_id, supplier_name, quantity, unit_cost,
// invoice_number, batch_number, expiry_date, batch_id, purchased_at, updated_at
func scanPurchase(s scanner) (*purchase.Purchase, error) {
	var (
		p            purchase.Purchase
		supplierName sql.NullString
	)

	if err := s.Scan(
		&p.ID, &p.ProductID, &p.ProductName, &p.SupplierID, &supplierName, &p.Quantity, &p.UnitCost,
		&p.InvoiceNumber, &p.BatchNumber, &p.ExpiryDate, &p.BatchID, &p.PurchasedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.SupplierName = supplierName.String

	return &p, nil
}

const selectPurchase = `
	SELECT pu.id, pu.product_id, p.name, pu.supplier_id, su.name, pu.quantity, pu.unit_cost,
		pu.invoice_number, pu.batch_number, pu.expiry_date, pu.batch_id, pu.purchased_at, pu.updated_at
	FROM purchases pu
	JOIN products p ON p.id = pu.product_id
	LEFT JOIN suppliers su ON su.id = pu.supplier_id`

func (s *Store) BeginTx(ctx context.Context) (purchase.Tx, error) {
	ltx, err := s.ledger.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &tx{Tx: ltx}, nil
}

func (s *Store) GetPurchase(ctx context.Context, id int64) (*purchase.Purchase, error) {
	p, err := scanPurchase(s.db.QueryRowContext(ctx, selectPurchase+` WHERE pu.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchase.ErrNotFound
		}

		return nil, fmt.Errorf("getting purchase: %w", err)
	}

	return p, nil
}

func (s *Store) ListPurchases(ctx context.Context, filter purchase.ListFilter) ([]*purchase.Purchase, error) {
	query := selectPurchase + ` WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.ProductID != nil {
		query += fmt.Sprintf(" AND pu.product_id = $%d", argIdx)

		args = append(args, *filter.ProductID)
		argIdx++
	}

	if filter.SupplierID != nil {
		query += fmt.Sprintf(" AND pu.supplier_id = $%d", argIdx)

		args = append(args, *filter.SupplierID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND pu.purchased_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND pu.purchased_at < $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY pu.purchased_at DESC, pu.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	var out []*purchase.Purchase

	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchase rows: %w", err)
	}

	return out, nil
}

type tx struct {
	*ledgerStore.Tx
}

func (t *tx) CreatePurchase(ctx context.Context, p *purchase.Purchase) error {
	query := `
		INSERT INTO purchases (product_id, supplier_id, quantity, unit_cost, invoice_number, batch_number, expiry_date, batch_id, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, purchased_at
	`

	err := t.Tx.Tx.QueryRowContext(ctx, query,
		p.ProductID,
		p.SupplierID,
		p.Quantity,
		p.UnitCost,
		p.InvoiceNumber,
		p.BatchNumber,
		p.ExpiryDate,
		p.BatchID,
	).Scan(&p.ID, &p.PurchasedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("creating purchase: %w", ledger.ErrMissingLedgerRecord)
		}

		return fmt.Errorf("creating purchase: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) LockPurchase(ctx context.Context, id int64) (*purchase.Purchase, error) {
	p, err := scanPurchase(t.Tx.Tx.QueryRowContext(ctx, selectPurchase+` WHERE pu.id = $1 FOR UPDATE OF pu`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchase.ErrNotFound
		}

		return nil, fmt.Errorf("locking purchase: %w", database.Classify(err))
	}

	return p, nil
}

func (t *tx) UpdatePurchase(ctx context.Context, p *purchase.Purchase) error {
	query := `
		UPDATE purchases
		SET supplier_id = $1, quantity = $2, unit_cost = $3, invoice_number = $4, batch_number = $5,
			expiry_date = $6, batch_id = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := t.Tx.Tx.QueryRowContext(ctx, query,
		p.SupplierID,
		p.Quantity,
		p.UnitCost,
		p.InvoiceNumber,
		p.BatchNumber,
		p.ExpiryDate,
		p.BatchID,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return purchase.ErrNotFound
		}

		return fmt.Errorf("updating purchase: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) DeletePurchase(ctx context.Context, id int64) error {
	if _, err := t.Tx.Tx.ExecContext(ctx, `DELETE FROM purchases WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting purchase: %w", database.Classify(err))
	}

	return nil
}
