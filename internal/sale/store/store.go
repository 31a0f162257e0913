package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keyurdhanani/store-management-project/internal/database"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
	ledgerStore "github.com/keyurdhanani/store-management-project/internal/ledger/store"
	"github.com/keyurdhanani/store-management-project/internal/sale"
)

const invoiceSequence = "sale"

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

// Expected column order: id, invoice_number, sold_at, customer_name, discount_rate, tax_rate, subtotal,
// discount_amount, tax_amount, total
func scanInvoice(s scanner) (*sale.Invoice, error) {
	var inv sale.Invoice
	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.SoldAt, &inv.CustomerName, &inv.DiscountRate, &inv.TaxRate,
		&inv.Subtotal, &inv.DiscountAmount, &inv.TaxAmount, &inv.Total,
	); err != nil {
		return nil, err
	}

	return &inv, nil
}

const selectInvoice = `
	SELECT id, invoice_number, sold_at, customer_name, discount_rate, tax_rate, subtotal,
		discount_amount, tax_amount, total
	FROM sale_invoices`

func (s *Store) BeginTx(ctx context.Context) (sale.Tx, error) {
	ltx, err := s.ledger.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &tx{Tx: ltx}, nil
}

func (s *Store) Availability(ctx context.Context, productIDs []int64) (map[int64]ledger.Stock, error) {
	return s.ledger.Availability(ctx, productIDs)
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*sale.Invoice, error) {
	inv, err := scanInvoice(s.db.QueryRowContext(ctx, selectInvoice+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if err := s.loadItems(ctx, []*sale.Invoice{inv}); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter sale.ListFilter) ([]*sale.Invoice, error) {
	query := selectInvoice + ` WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND sold_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND sold_at < $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY sold_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var out []*sale.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		out = append(out, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	if err := s.loadItems(ctx, out); err != nil {
		return nil, err
	}

	return out, nil
}

// loadItems attaches items and their batch allocations to the given invoices.
func (s *Store) loadItems(ctx context.Context, invoices []*sale.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	ids := make([]int64, len(invoices))
	byID := make(map[int64]*sale.Invoice, len(invoices))

	for i, inv := range invoices {
		ids[i] = inv.ID
		byID[inv.ID] = inv
	}

	query := `
		SELECT si.id, si.invoice_id, si.product_id, p.name, si.quantity, si.unit_price, si.unit_cost,
			si.batch_id, si.cost_total, si.line_total
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.invoice_id = ANY($1)
		ORDER BY si.invoice_id, si.id
	`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("listing sale items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64]*sale.Item)

	var itemIDs []int64

	for rows.Next() {
		var it sale.Item
		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.UnitCost,
			&it.BatchID, &it.CostTotal, &it.LineTotal,
		); err != nil {
			return fmt.Errorf("scanning sale item: %w", err)
		}

		inv := byID[it.InvoiceID]
		inv.Items = append(inv.Items, &it)
		items[it.ID] = &it
		itemIDs = append(itemIDs, it.ID)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating sale item rows: %w", err)
	}

	return s.loadAllocations(ctx, itemIDs, items)
}

func (s *Store) loadAllocations(ctx context.Context, itemIDs []int64, items map[int64]*sale.Item) error {
	if len(itemIDs) == 0 {
		return nil
	}

	query := `
		SELECT sale_item_id, COALESCE(batch_id, 0), batch_number, quantity, unit_cost
		FROM sale_item_batches
		WHERE sale_item_id = ANY($1)
		ORDER BY sale_item_id, ctid
	`

	rows, err := s.db.QueryContext(ctx, query, itemIDs)
	if err != nil {
		return fmt.Errorf("listing allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID int64
			d      ledger.Deduction
		)

		if err := rows.Scan(&itemID, &d.BatchID, &d.BatchNumber, &d.Quantity, &d.UnitCost); err != nil {
			return fmt.Errorf("scanning allocation: %w", err)
		}

		if it, ok := items[itemID]; ok {
			it.Allocations = append(it.Allocations, d)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating allocation rows: %w", err)
	}

	return nil
}

func (s *Store) DailySummary(ctx context.Context, from, to time.Time) ([]sale.DailySummary, error) {
	query := `
		SELECT date_trunc('day', i.sold_at AT TIME ZONE 'UTC') AS day,
			COALESCE(SUM(si.line_total), 0),
			COALESCE(SUM(si.cost_total), 0),
			COUNT(si.id)
		FROM sale_invoices i
		JOIN sale_items si ON si.invoice_id = i.id
		WHERE i.sold_at >= $1 AND i.sold_at < $2
		GROUP BY day
		ORDER BY day
	`

	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarising sales: %w", err)
	}
	defer rows.Close()

	var out []sale.DailySummary

	for rows.Next() {
		var d sale.DailySummary
		if err := rows.Scan(&d.Day, &d.Revenue, &d.Cost, &d.Items); err != nil {
			return nil, fmt.Errorf("scanning daily summary: %w", err)
		}

		d.Day = d.Day.UTC()
		d.Profit = d.Revenue.Sub(d.Cost)
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}

	return out, nil
}

type tx struct {
	*ledgerStore.Tx
}

// NextInvoiceSequence relies on the row lock the UPDATE takes until commit.
func (t *tx) NextInvoiceSequence(ctx context.Context) (int64, error) {
	query := `UPDATE invoice_sequences SET value = value + 1 WHERE name = $1 RETURNING value`

	var seq int64
	if err := t.Tx.Tx.QueryRowContext(ctx, query, invoiceSequence).Scan(&seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("invoice sequence %q: %w", invoiceSequence, ledger.ErrMissingLedgerRecord)
		}

		return 0, fmt.Errorf("advancing invoice sequence: %w", database.Classify(err))
	}

	return seq, nil
}

func (t *tx) CreateInvoice(ctx context.Context, inv *sale.Invoice) error {
	query := `
		INSERT INTO sale_invoices (invoice_number, sold_at, customer_name, discount_rate, tax_rate, subtotal,
			discount_amount, tax_amount, total)
		VALUES ($1, NOW(), $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, sold_at
	`

	err := t.Tx.Tx.QueryRowContext(ctx, query,
		inv.Number,
		inv.CustomerName,
		inv.DiscountRate,
		inv.TaxRate,
		inv.Subtotal,
		inv.DiscountAmount,
		inv.TaxAmount,
		inv.Total,
	).Scan(&inv.ID, &inv.SoldAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("invoice %s: %w", inv.Number, ledger.ErrDuplicateInvoiceNumber)
		}

		return fmt.Errorf("creating invoice: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) CreateItem(ctx context.Context, item *sale.Item) error {
	query := `
		INSERT INTO sale_items (invoice_id, product_id, quantity, unit_price, unit_cost, batch_id, cost_total, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := t.Tx.Tx.QueryRowContext(ctx, query,
		item.InvoiceID,
		item.ProductID,
		item.Quantity,
		item.UnitPrice,
		item.UnitCost,
		item.BatchID,
		item.CostTotal,
		item.LineTotal,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("creating sale item: %w", database.Classify(err))
	}

	allocQuery := `
		INSERT INTO sale_item_batches (sale_item_id, batch_id, batch_number, quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, d := range item.Allocations {
		if _, err := t.Tx.Tx.ExecContext(ctx, allocQuery, item.ID, d.BatchID, d.BatchNumber, d.Quantity, d.UnitCost); err != nil {
			return fmt.Errorf("recording allocation: %w", database.Classify(err))
		}
	}

	return nil
}
