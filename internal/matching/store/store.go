package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyurdhanani/store-management-project/internal/database"
	"github.com/keyurdhanani/store-management-project/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectMapping = `
	SELECT m.id, m.raw_pattern, m.product_id, p.name, m.created_at
	FROM description_mappings m
	JOIN products p ON p.id = m.product_id`

// FindMatch prefers the longest pattern, then the most recent one. It returns nil when nothing matches.
func (s *Store) FindMatch(ctx context.Context, rawDescription string) (*matching.Mapping, error) {
	query := selectMapping + `
		WHERE p.active AND $1 ILIKE '%' || m.raw_pattern || '%'
		ORDER BY LENGTH(m.raw_pattern) DESC, m.created_at DESC
		LIMIT 1
	`

	var m matching.Mapping

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&m.ID, &m.RawPattern, &m.ProductID, &m.ProductName, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return &m, nil
}

func (s *Store) CreateMapping(ctx context.Context, m *matching.Mapping) error {
	query := `
		INSERT INTO description_mappings (raw_pattern, product_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, m.RawPattern, m.ProductID).Scan(&m.ID, &m.CreatedAt); err != nil {
		if database.IsForeignKeyViolation(err) {
			return matching.ErrUnknownProduct
		}

		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}

func (s *Store) ListMappings(ctx context.Context) ([]*matching.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, selectMapping+` ORDER BY m.raw_pattern ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var out []*matching.Mapping

	for rows.Next() {
		var m matching.Mapping
		if err := rows.Scan(&m.ID, &m.RawPattern, &m.ProductID, &m.ProductName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		out = append(out, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mapping rows: %w", err)
	}

	return out, nil
}

func (s *Store) DeleteMapping(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM description_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return matching.ErrNotFound
	}

	return nil
}
