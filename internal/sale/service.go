package sale

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

type Repository interface {
	BeginTx(ctx context.Context) (Tx, error)
	Availability(ctx context.Context, productIDs []int64) (map[int64]ledger.Stock, error)

	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	DailySummary(ctx context.Context, from, to time.Time) ([]DailySummary, error)
}

// Tx is a store transaction able to write invoices together with the ledger rows they consume.
type Tx interface {
	ledger.Tx

	// NextInvoiceSequence increments and returns the invoice counter under a row lock.
	NextInvoiceSequence(ctx context.Context) (int64, error)
	CreateInvoice(ctx context.Context, inv *Invoice) error
	CreateItem(ctx context.Context, item *Item) error

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

type LineParams struct {
	ProductID int64 `validate:"required,gt=0"`
	Quantity  int   `validate:"min=1"`
	UnitPrice decimal.Decimal
}

type RecordParams struct {
	CustomerName string `validate:"max=200"`
	DiscountRate decimal.Decimal
	TaxRate      decimal.Decimal
	Lines        []LineParams `validate:"required,min=1,dive"`
}

type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// Record creates an invoice and deducts every line from stock in FEFO order. The invoice, its
// items and all stock and batch debits commit together or not at all.
func (s *Service) Record(ctx context.Context, params RecordParams) (*Invoice, error) {
	if err := s.check(params); err != nil {
		return nil, err
	}

	stocks, err := s.precheck(ctx, params.Lines)
	if err != nil {
		return nil, err
	}

	totals := Compose(params.Lines, params.DiscountRate, params.TaxRate)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	items := make([]*Item, len(params.Lines))

	for _, i := range allocationOrder(params.Lines) {
		line := params.Lines[i]

		deductions, err := ledger.Deduct(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("line %d (product %d): %w", i+1, line.ProductID, err)
		}

		first := deductions[0]
		items[i] = &Item{
			ProductID:   line.ProductID,
			ProductName: stocks[line.ProductID].ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			UnitCost:    first.UnitCost,
			BatchID:     &first.BatchID,
			CostTotal:   ledger.TotalCost(deductions).Round(moneyPlaces),
			LineTotal:   LineTotal(line.Quantity, line.UnitPrice),
			Allocations: deductions,
		}
	}

	// Stock rows are locked before the invoice sequence row.
	seq, err := tx.NextInvoiceSequence(ctx)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		Number:         FormatInvoiceNumber(seq),
		CustomerName:   strings.TrimSpace(params.CustomerName),
		DiscountRate:   params.DiscountRate,
		TaxRate:        params.TaxRate,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		Total:          totals.Total,
	}

	if err := tx.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	for i, item := range items {
		item.InvoiceID = inv.ID

		if err := tx.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("line %d (product %d): %w", i+1, item.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}

	inv.Items = items

	return inv, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// DailySummary aggregates revenue, cost and profit per day for sales in [from, to).
func (s *Service) DailySummary(ctx context.Context, from, to time.Time) ([]DailySummary, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: empty date range", ErrInvalidInput)
	}

	return s.repo.DailySummary(ctx, from, to)
}

// precheck rejects lines that cannot possibly be served by the stock currently on hand. It reads
// without locks; Deduct repeats the check under lock.
func (s *Service) precheck(ctx context.Context, lines []LineParams) (map[int64]ledger.Stock, error) {
	requested := make(map[int64]int, len(lines))
	ids := make([]int64, 0, len(lines))

	for _, l := range lines {
		if _, seen := requested[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}

		requested[l.ProductID] += l.Quantity
	}

	stocks, err := s.repo.Availability(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("reading availability: %w", err)
	}

	for _, id := range ids {
		stock, ok := stocks[id]
		if !ok {
			return nil, fmt.Errorf("product %d has no stock record: %w", id, ledger.ErrMissingLedgerRecord)
		}

		if requested[id] > stock.Quantity {
			return nil, &ledger.InsufficientStockError{
				ProductID:   id,
				ProductName: stock.ProductName,
				Requested:   requested[id],
				Available:   stock.Quantity,
			}
		}
	}

	return stocks, nil
}

func (s *Service) check(params RecordParams) error {
	if err := s.validate.Struct(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for _, rate := range []decimal.Decimal{params.DiscountRate, params.TaxRate} {
		if rate.IsNegative() || rate.GreaterThan(hundred) {
			return ErrInvalidRate
		}
	}

	for _, l := range params.Lines {
		if l.UnitPrice.IsNegative() {
			return ErrInvalidPrice
		}
	}

	return nil
}

// allocationOrder returns line indexes sorted by product id so concurrent sales lock stock rows in
// the same order.
func allocationOrder(lines []LineParams) []int {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(lines[a].ProductID, lines[b].ProductID)
	})

	return order
}
