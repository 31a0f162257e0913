package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

type Repository interface {
	BeginTx(ctx context.Context) (Tx, error)
	GetPurchase(ctx context.Context, id int64) (*Purchase, error)
	ListPurchases(ctx context.Context, filter ListFilter) ([]*Purchase, error)
}

// Tx is a store transaction able to mutate purchases together with the ledger rows they feed.
type Tx interface {
	ledger.Tx

	CreatePurchase(ctx context.Context, p *Purchase) error
	LockPurchase(ctx context.Context, id int64) (*Purchase, error)
	UpdatePurchase(ctx context.Context, p *Purchase) error
	DeletePurchase(ctx context.Context, id int64) error

	Commit() error
	Rollback() error
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

type RecordParams struct {
	ProductID     int64  `validate:"required,gt=0"`
	SupplierID    *int64 `validate:"omitempty,gt=0"`
	Quantity      int    `validate:"min=1"`
	UnitCost      decimal.Decimal
	InvoiceNumber string `validate:"max=100"`
	BatchNumber   string `validate:"max=100"`
	ExpiryDate    *time.Time
}

type UpdateParams struct {
	SupplierID    *int64 `validate:"omitempty,gt=0"`
	Quantity      int    `validate:"min=1"`
	UnitCost      decimal.Decimal
	InvoiceNumber string `validate:"max=100"`
	BatchNumber   string `validate:"max=100"`
	ExpiryDate    *time.Time
}

type ListFilter struct {
	ProductID  *int64
	SupplierID *int64
	StartDate  *time.Time
	EndDate    *time.Time
}

// Record stores a purchase and receives its quantity into stock and the target batch in one
// transaction.
func (s *Service) Record(ctx context.Context, params RecordParams) (*Purchase, error) {
	if err := s.check(params, params.UnitCost); err != nil {
		return nil, err
	}

	p := &Purchase{
		ProductID:     params.ProductID,
		SupplierID:    params.SupplierID,
		Quantity:      params.Quantity,
		UnitCost:      params.UnitCost,
		InvoiceNumber: strings.TrimSpace(params.InvoiceNumber),
		BatchNumber:   batchNumber(params.ProductID, params.BatchNumber, params.InvoiceNumber),
		ExpiryDate:    params.ExpiryDate,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin purchase: %w", err)
	}
	defer tx.Rollback()

	if err := ledger.EnsureStock(ctx, tx, p.ProductID); err != nil {
		return nil, err
	}

	if _, err := ledger.Increment(ctx, tx, p.ProductID, p.Quantity); err != nil {
		return nil, err
	}

	batch, err := ledger.Receive(ctx, tx, p.ProductID, ledger.BatchSpec{
		Number:     p.BatchNumber,
		CostPrice:  p.UnitCost,
		ExpiryDate: p.ExpiryDate,
	}, p.Quantity)
	if err != nil {
		return nil, err
	}

	p.BatchID = &batch.ID

	if err := tx.CreatePurchase(ctx, p); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	return p, nil
}

// Update applies a changed quantity or cost to an existing purchase. The quantity difference is
// applied to the linked batch and to stock; a decrease can only remove what is still in the batch.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Purchase, error) {
	if err := s.check(params, params.UnitCost); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin purchase update: %w", err)
	}
	defer tx.Rollback()

	p, err := tx.LockPurchase(ctx, id)
	if err != nil {
		return nil, err
	}

	delta := params.Quantity - p.Quantity

	if _, err := tx.LockStock(ctx, p.ProductID); err != nil {
		if delta > 0 || !errors.Is(err, ledger.ErrMissingLedgerRecord) {
			return nil, fmt.Errorf("locking stock: %w", err)
		}
	}

	number := p.BatchNumber
	if strings.TrimSpace(params.BatchNumber+params.InvoiceNumber) != "" {
		number = batchNumber(p.ProductID, params.BatchNumber, params.InvoiceNumber)
	}

	batch, err := s.linkedBatch(ctx, tx, p)
	if err != nil {
		return nil, err
	}

	switch {
	case batch == nil && delta > 0:
		return nil, fmt.Errorf("purchase %d has no batch to receive into: %w", p.ID, ledger.ErrMissingLedgerRecord)
	case batch != nil:
		batch.Number = number
		batch.CostPrice = params.UnitCost
		batch.ExpiryDate = params.ExpiryDate

		if err := tx.UpdateBatch(ctx, *batch); err != nil {
			return nil, fmt.Errorf("updating batch: %w", err)
		}

		if delta > 0 {
			if err := tx.AddBatch(ctx, batch.ID, delta); err != nil {
				return nil, fmt.Errorf("crediting batch: %w", err)
			}

			if _, err := ledger.Increment(ctx, tx, p.ProductID, delta); err != nil {
				return nil, err
			}
		} else if delta < 0 {
			removed, deleted, err := ledger.Withdraw(ctx, tx, *batch, -delta)
			if err != nil {
				return nil, err
			}

			if _, err := ledger.Release(ctx, tx, p.ProductID, removed); err != nil {
				return nil, err
			}

			if deleted {
				p.BatchID = nil
			}
		}
	}

	p.SupplierID = params.SupplierID
	p.Quantity = params.Quantity
	p.UnitCost = params.UnitCost
	p.InvoiceNumber = strings.TrimSpace(params.InvoiceNumber)
	p.BatchNumber = number
	p.ExpiryDate = params.ExpiryDate

	if err := tx.UpdatePurchase(ctx, p); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase update: %w", err)
	}

	return p, nil
}

// Delete removes a purchase and reverses what it added to its batch and to stock. Units already
// sold out of the batch cannot be reversed; stock and batch are reduced by the same amount.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin purchase delete: %w", err)
	}
	defer tx.Rollback()

	p, err := tx.LockPurchase(ctx, id)
	if err != nil {
		return err
	}

	if _, err := tx.LockStock(ctx, p.ProductID); err != nil && !errors.Is(err, ledger.ErrMissingLedgerRecord) {
		return fmt.Errorf("locking stock: %w", err)
	}

	batch, err := s.linkedBatch(ctx, tx, p)
	if err != nil {
		return err
	}

	if batch != nil {
		removed, _, err := ledger.Withdraw(ctx, tx, *batch, p.Quantity)
		if err != nil {
			return err
		}

		if _, err := ledger.Release(ctx, tx, p.ProductID, removed); err != nil {
			return err
		}
	}

	if err := tx.DeletePurchase(ctx, p.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purchase delete: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Purchase, error) {
	return s.repo.GetPurchase(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Purchase, error) {
	return s.repo.ListPurchases(ctx, filter)
}

// linkedBatch locks the batch the purchase was received into. A purchase whose batch has already
// been removed yields nil.
func (s *Service) linkedBatch(ctx context.Context, tx Tx, p *Purchase) (*ledger.Batch, error) {
	if p.BatchID == nil {
		return nil, nil
	}

	b, err := tx.LockBatch(ctx, *p.BatchID)
	if errors.Is(err, ledger.ErrMissingLedgerRecord) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("locking batch: %w", err)
	}

	return &b, nil
}

func (s *Service) check(params any, unitCost decimal.Decimal) error {
	if err := s.validate.Struct(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if unitCost.LessThan(MinUnitCost) {
		return ErrInvalidUnitCost
	}

	return nil
}

// batchNumber picks the batch a purchase lands in: the explicit number, else the supplier invoice
// number, else a generated one.
func batchNumber(productID int64, number, invoice string) string {
	if n := strings.TrimSpace(number); n != "" {
		return n
	}

	if n := strings.TrimSpace(invoice); n != "" {
		return n
	}

	return fmt.Sprintf("AUTO-%d-%s", productID, uuid.NewString()[:8])
}
