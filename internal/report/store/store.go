package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/keyurdhanani/store-management-project/internal/report"
	saleStore "github.com/keyurdhanani/store-management-project/internal/sale/store"
)

type Store struct {
	db    *sql.DB
	sales *saleStore.Store
}

func New(db *sql.DB, sales *saleStore.Store) *Store {
	return &Store{db: db, sales: sales}
}

func (s *Store) Dashboard(ctx context.Context, since time.Time) (report.Dashboard, error) {
	var d report.Dashboard

	stockQuery := `
		SELECT
			(SELECT COUNT(*) FROM products),
			COALESCE(SUM(p.base_price * s.quantity), 0),
			COUNT(*) FILTER (WHERE s.quantity > 0 AND s.quantity <= s.low_stock_threshold)
		FROM stock s
		JOIN products p ON p.id = s.product_id
	`

	if err := s.db.QueryRowContext(ctx, stockQuery).Scan(&d.TotalProducts, &d.TotalStockValue, &d.LowStockCount); err != nil {
		return report.Dashboard{}, fmt.Errorf("reading stock totals: %w", err)
	}

	salesQuery := `SELECT COALESCE(SUM(total), 0), COUNT(*) FROM sale_invoices WHERE sold_at >= $1`

	if err := s.db.QueryRowContext(ctx, salesQuery, since).Scan(&d.RecentRevenue, &d.RecentSalesCount); err != nil {
		return report.Dashboard{}, fmt.Errorf("reading recent sales: %w", err)
	}

	return d, nil
}

func (s *Store) LowStock(ctx context.Context) ([]report.LowStockItem, error) {
	query := `
		SELECT p.id, p.name, COALESCE(c.name, ''), s.quantity, s.low_stock_threshold, s.expiry_date
		FROM stock s
		JOIN products p ON p.id = s.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE s.quantity > 0 AND s.quantity <= s.low_stock_threshold
		ORDER BY s.quantity ASC, p.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing low stock: %w", err)
	}
	defer rows.Close()

	var out []report.LowStockItem

	for rows.Next() {
		var it report.LowStockItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.CategoryName, &it.Quantity, &it.LowStockThreshold, &it.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scanning low stock: %w", err)
		}

		out = append(out, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating low stock rows: %w", err)
	}

	return out, nil
}

// Daily reuses the sale store aggregation.
func (s *Store) Daily(ctx context.Context, from, to time.Time) ([]report.Day, error) {
	summaries, err := s.sales.DailySummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]report.Day, len(summaries))
	for i, d := range summaries {
		out[i] = report.Day{Day: d.Day, Revenue: d.Revenue, Cost: d.Cost, Profit: d.Profit, Items: d.Items}
	}

	return out, nil
}
