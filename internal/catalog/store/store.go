package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyurdhanani/store-management-project/internal/catalog"
	"github.com/keyurdhanani/store-management-project/internal/database"
	ledgerStore "github.com/keyurdhanani/store-management-project/internal/ledger/store"
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

// Expected column order: id, name, category_id, category_name, base_price, mrp, supplier_cost, description,
// active, created_at, updated_at, quantity, low_stock_threshold
func scanProduct(s scanner) (*catalog.Product, error) {
	var (
		p            catalog.Product
		categoryName sql.NullString
		quantity     sql.NullInt64
		threshold    sql.NullInt64
	)

	if err := s.Scan(
		&p.ID, &p.Name, &p.CategoryID, &categoryName, &p.BasePrice, &p.MRP, &p.SupplierCost, &p.Description,
		&p.Active, &p.CreatedAt, &p.UpdatedAt, &quantity, &threshold,
	); err != nil {
		return nil, err
	}

	p.CategoryName = categoryName.String
	p.Quantity = int(quantity.Int64)
	p.LowStockThreshold = int(threshold.Int64)

	return &p, nil
}

const selectProduct = `
	SELECT p.id, p.name, p.category_id, c.name, p.base_price, p.mrp, p.supplier_cost, p.description,
		p.active, p.created_at, p.updated_at, s.quantity, s.low_stock_threshold
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN stock s ON s.product_id = p.id`

// CreateProduct inserts the product and its stock row in one ledger transaction.
func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product, lowStockThreshold int) error {
	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (name, category_id, base_price, mrp, supplier_cost, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW())
		RETURNING id, created_at
	`

	err = tx.Tx.QueryRowContext(ctx, query,
		p.Name,
		p.CategoryID,
		p.BasePrice,
		p.MRP,
		p.SupplierCost,
		p.Description,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return productError("creating product", err)
	}

	if err := tx.CreateStock(ctx, p.ID, lowStockThreshold); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit product: %w", err)
	}

	p.Active = true

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, selectProduct+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, error) {
	query := selectProduct + ` WHERE TRUE`

	var args []any

	argIdx := 1

	if !filter.IncludeInactive {
		query += " AND p.active"
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND p.category_id = $%d", argIdx)

		args = append(args, *filter.CategoryID)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND p.name ILIKE '%%' || $%d || '%%'", argIdx)

		args = append(args, filter.Search)
		argIdx++
	}

	query += " ORDER BY p.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		UPDATE products
		SET name = $1, category_id = $2, base_price = $3, mrp = $4, supplier_cost = $5, description = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		p.CategoryID,
		p.BasePrice,
		p.MRP,
		p.SupplierCost,
		p.Description,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.ErrNotFound
		}

		return productError("updating product", err)
	}

	return nil
}

func (s *Store) SetProductActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("updating product status: %w", err)
	}

	return affected(res)
}

// DeleteProduct relies on the RESTRICT references from batches, purchases and sale items.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return catalog.ErrProductInUse
		}

		return fmt.Errorf("deleting product: %w", err)
	}

	return affected(res)
}

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	query := `
		INSERT INTO categories (name, description, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt); err != nil {
		return nameError("creating category", err)
	}

	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Category

	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		out = append(out, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	query := `UPDATE categories SET name = $1, description = $2 WHERE id = $3 RETURNING created_at`

	if err := s.db.QueryRowContext(ctx, query, c.Name, c.Description, c.ID).Scan(&c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.ErrNotFound
		}

		return nameError("updating category", err)
	}

	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	return affected(res)
}

func (s *Store) CreateSupplier(ctx context.Context, sup *catalog.Supplier) error {
	query := `
		INSERT INTO suppliers (name, contact_info, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, sup.Name, sup.ContactInfo).Scan(&sup.ID, &sup.CreatedAt); err != nil {
		return nameError("creating supplier", err)
	}

	return nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]*catalog.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, contact_info, created_at FROM suppliers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Supplier

	for rows.Next() {
		var sup catalog.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.ContactInfo, &sup.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning supplier: %w", err)
		}

		out = append(out, &sup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating supplier rows: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sup *catalog.Supplier) error {
	query := `UPDATE suppliers SET name = $1, contact_info = $2 WHERE id = $3 RETURNING created_at`

	if err := s.db.QueryRowContext(ctx, query, sup.Name, sup.ContactInfo, sup.ID).Scan(&sup.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.ErrNotFound
		}

		return nameError("updating supplier", err)
	}

	return nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting supplier: %w", err)
	}

	return affected(res)
}

func affected(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}

	return nil
}

func nameError(op string, err error) error {
	if database.IsUniqueViolation(err) {
		return catalog.ErrDuplicateName
	}

	return fmt.Errorf("%s: %w", op, err)
}

// productError additionally maps an unknown category to ErrNotFound.
func productError(op string, err error) error {
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%s: category: %w", op, catalog.ErrNotFound)
	}

	return nameError(op, err)
}
