package matching

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (*Mapping, error)
	CreateMapping(ctx context.Context, m *Mapping) error
	ListMappings(ctx context.Context) ([]*Mapping, error)
	DeleteMapping(ctx context.Context, id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the product whose longest learned pattern occurs in rawDescription.
// ok is false when nothing matches.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (productID int64, ok bool, err error) {
	raw := strings.TrimSpace(rawDescription)
	if raw == "" {
		return 0, false, nil
	}

	m, err := s.repo.FindMatch(ctx, raw)
	if err != nil {
		return 0, false, err
	}

	if m == nil {
		return 0, false, nil
	}

	return m.ProductID, true, nil
}

// Learn remembers that descriptions containing rawPattern refer to productID.
func (s *Service) Learn(ctx context.Context, rawPattern string, productID int64) (*Mapping, error) {
	pattern := strings.TrimSpace(rawPattern)
	if utf8.RuneCountInString(pattern) < MinPatternLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	if productID <= 0 {
		return nil, ErrUnknownProduct
	}

	m := &Mapping{RawPattern: pattern, ProductID: productID}
	if err := s.repo.CreateMapping(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) List(ctx context.Context) ([]*Mapping, error) {
	return s.repo.ListMappings(ctx)
}

func (s *Service) Forget(ctx context.Context, id int64) error {
	return s.repo.DeleteMapping(ctx, id)
}
