package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	CreateProduct(ctx context.Context, p *Product, lowStockThreshold int) error
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	SetProductActive(ctx context.Context, id int64, active bool) error
	DeleteProduct(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	CreateSupplier(ctx context.Context, s *Supplier) error
	ListSuppliers(ctx context.Context) ([]*Supplier, error)
	UpdateSupplier(ctx context.Context, s *Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error
}

// MinBasePrice is the lowest selling price a product may carry.
var MinBasePrice = decimal.RequireFromString("0.01")

type Service struct {
	repo              Repository
	validate          *validator.Validate
	lowStockThreshold int
}

// NewService returns a catalog service. New products get a stock row with the given low-stock
// threshold; a negative value falls back to ledger.DefaultLowStockThreshold.
func NewService(repo Repository, lowStockThreshold int) *Service {
	if lowStockThreshold < 0 {
		lowStockThreshold = ledger.DefaultLowStockThreshold
	}

	return &Service{repo: repo, validate: validator.New(), lowStockThreshold: lowStockThreshold}
}

type ProductParams struct {
	Name         string `validate:"required,max=200"`
	CategoryID   *int64 `validate:"omitempty,gt=0"`
	BasePrice    decimal.Decimal
	MRP          decimal.Decimal
	SupplierCost decimal.Decimal
	Description  string
}

type ProductFilter struct {
	CategoryID      *int64
	Search          string
	IncludeInactive bool
}

type CategoryParams struct {
	Name        string `validate:"required,max=100"`
	Description string
}

type SupplierParams struct {
	Name        string `validate:"required,max=200"`
	ContactInfo string
}

// CreateProduct stores a product and its zero-quantity stock row.
func (s *Service) CreateProduct(ctx context.Context, params ProductParams) (*Product, error) {
	if err := s.checkProduct(params); err != nil {
		return nil, err
	}

	p := &Product{
		Name:              strings.TrimSpace(params.Name),
		CategoryID:        params.CategoryID,
		BasePrice:         params.BasePrice,
		MRP:               params.MRP,
		SupplierCost:      params.SupplierCost,
		Description:       params.Description,
		Active:            true,
		LowStockThreshold: s.lowStockThreshold,
	}

	if err := s.repo.CreateProduct(ctx, p, s.lowStockThreshold); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, params ProductParams) (*Product, error) {
	if err := s.checkProduct(params); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(params.Name)
	p.CategoryID = params.CategoryID
	p.BasePrice = params.BasePrice
	p.MRP = params.MRP
	p.SupplierCost = params.SupplierCost
	p.Description = params.Description

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)

	return s.repo.ListProducts(ctx, filter)
}

// Deactivate hides a product from sale while keeping its history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetProductActive(ctx, id, false)
}

func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.repo.SetProductActive(ctx, id, true)
}

// DeleteProduct removes a product that was never purchased or sold. Otherwise ErrProductInUse is
// returned and the product should be deactivated instead.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, params CategoryParams) (*Category, error) {
	if err := s.check(params); err != nil {
		return nil, err
	}

	c := &Category{Name: strings.TrimSpace(params.Name), Description: params.Description}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, params CategoryParams) (*Category, error) {
	if err := s.check(params); err != nil {
		return nil, err
	}

	c := &Category{ID: id, Name: strings.TrimSpace(params.Name), Description: params.Description}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// DeleteCategory removes a category; its products become uncategorised.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) CreateSupplier(ctx context.Context, params SupplierParams) (*Supplier, error) {
	if err := s.check(params); err != nil {
		return nil, err
	}

	sup := &Supplier{Name: strings.TrimSpace(params.Name), ContactInfo: params.ContactInfo}
	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}

	return sup, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, params SupplierParams) (*Supplier, error) {
	if err := s.check(params); err != nil {
		return nil, err
	}

	sup := &Supplier{ID: id, Name: strings.TrimSpace(params.Name), ContactInfo: params.ContactInfo}
	if err := s.repo.UpdateSupplier(ctx, sup); err != nil {
		return nil, err
	}

	return sup, nil
}

// DeleteSupplier removes a supplier; purchases keep their history without it.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	return s.repo.DeleteSupplier(ctx, id)
}

func (s *Service) checkProduct(params ProductParams) error {
	if err := s.check(params); err != nil {
		return err
	}

	if params.BasePrice.LessThan(MinBasePrice) {
		return fmt.Errorf("%w: base price must be at least %s", ErrInvalidPrice, MinBasePrice)
	}

	if params.MRP.IsNegative() || params.SupplierCost.IsNegative() {
		return fmt.Errorf("%w: mrp and supplier cost must not be negative", ErrInvalidPrice)
	}

	return nil
}

func (s *Service) check(params any) error {
	if err := s.validate.Struct(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if name := nameOf(params); name == "" {
		return fmt.Errorf("%w: name must not be blank", ErrInvalidInput)
	}

	return nil
}

func nameOf(params any) string {
	switch p := params.(type) {
	case ProductParams:
		return strings.TrimSpace(p.Name)
	case CategoryParams:
		return strings.TrimSpace(p.Name)
	case SupplierParams:
		return strings.TrimSpace(p.Name)
	}

	return ""
}
