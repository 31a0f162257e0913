package report

import (
	"context"
	"log/slog"
	"time"
)

type Repository interface {
	Dashboard(ctx context.Context, since time.Time) (Dashboard, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
	Daily(ctx context.Context, from, to time.Time) ([]Day, error)
}

// Service serves report queries. Reports are unlocked reads and may lag writes by the cache TTL
// unless Invalidate is called after a mutation.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// WithClock replaces the time source used for the dashboard window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard")
	if err != nil {
		return Dashboard{}, err
	}

	var out Dashboard

	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		now := s.now().UTC()

		d, err := s.repo.Dashboard(ctx, now.Add(-DashboardWindow))
		if err != nil {
			return nil, err
		}

		d.TotalStockValue = d.TotalStockValue.Round(2)
		d.RecentRevenue = d.RecentRevenue.Round(2)
		d.GeneratedAt = now

		return d, nil
	})

	return out, err
}

// LowStock lists products with 0 < quantity <= threshold. Sold-out products are not included.
func (s *Service) LowStock(ctx context.Context) ([]LowStockItem, error) {
	key, err := s.cache.BuildKey(ctx, "low-stock")
	if err != nil {
		return nil, err
	}

	var out []LowStockItem

	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.LowStock(ctx)
	})

	return out, err
}

// Daily returns revenue, cost and profit per UTC day in [from, to).
func (s *Service) Daily(ctx context.Context, from, to time.Time) ([]Day, error) {
	if !from.Before(to) {
		return nil, ErrInvalidRange
	}

	key, err := s.cache.BuildKey(ctx, "daily", from.UTC().Format(time.DateOnly), to.UTC().Format(time.DateOnly))
	if err != nil {
		return nil, err
	}

	var out []Day

	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.Daily(ctx, from, to)
	})

	return out, err
}

// Invalidate drops cached reports. Failures are logged; stale reports expire with the TTL anyway.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate report cache", "error", err)
	}
}
