package sale_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
	"github.com/keyurdhanani/store-management-project/internal/ledger/ledgertest"
	"github.com/keyurdhanani/store-management-project/internal/sale"
)

func expires(n int) *time.Time {
	return new(time.Date(2025, time.April, n, 0, 0, 0, 0, time.UTC))
}

func assertBalanced(t *testing.T, store *ledgertest.Store) {
	t.Helper()

	drift, err := store.ListDrift(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("multi-line sale across batches", func(t *testing.T) {
		store := ledgertest.New()
		milk := store.AddProduct("Milk")
		bread := store.AddProduct("Bread")
		store.Seed(milk, "M1", dec("0.50"), expires(1), 3)
		store.Seed(milk, "M2", dec("0.60"), expires(9), 10)
		store.Seed(bread, "B1", dec("1.00"), nil, 4)

		svc := sale.NewService(store.Sales())

		inv, err := svc.Record(ctx, sale.RecordParams{
			CustomerName: " Ana ",
			DiscountRate: dec("10"),
			TaxRate:      dec("5"),
			Lines: []sale.LineParams{
				{ProductID: bread, Quantity: 1, UnitPrice: dec("100.00")},
				{ProductID: milk, Quantity: 5, UnitPrice: dec("20.00")},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "INV-00001", inv.Number)
		assert.Equal(t, "Ana", inv.CustomerName)
		assert.True(t, dec("189.00").Equal(inv.Total))
		require.Len(t, inv.Items, 2)

		breadLine, milkLine := inv.Items[0], inv.Items[1]
		assert.Equal(t, bread, breadLine.ProductID)
		assert.Equal(t, "Bread", breadLine.ProductName)
		assert.True(t, dec("1.00").Equal(breadLine.CostTotal))

		assert.Equal(t, milk, milkLine.ProductID)
		require.Len(t, milkLine.Allocations, 2)
		assert.Equal(t, "M1", milkLine.Allocations[0].BatchNumber)
		assert.Equal(t, 3, milkLine.Allocations[0].Quantity)
		assert.Equal(t, 2, milkLine.Allocations[1].Quantity)
		assert.True(t, dec("0.50").Equal(milkLine.UnitCost), "unit cost comes from the first batch")
		assert.Equal(t, milkLine.Allocations[0].BatchID, *milkLine.BatchID)
		assert.True(t, dec("2.70").Equal(milkLine.CostTotal))
		assert.True(t, dec("100.00").Equal(milkLine.LineTotal))
		assert.True(t, dec("97.30").Equal(milkLine.Profit()))

		assert.Equal(t, 8, store.StockOf(milk).Quantity)
		assert.Equal(t, 3, store.StockOf(bread).Quantity)
		assertBalanced(t, store)

		got, err := svc.Get(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, inv.Number, got.Number)
		assert.Len(t, got.Items, 2)
	})

	t.Run("over-request is rejected and nothing changes", func(t *testing.T) {
		store := ledgertest.New()
		pid := store.AddProduct("Cheese")
		store.Seed(pid, "C1", dec("2.00"), expires(3), 10)

		svc := sale.NewService(store.Sales())

		_, err := svc.Record(ctx, sale.RecordParams{
			Lines: []sale.LineParams{{ProductID: pid, Quantity: 11, UnitPrice: dec("3.00")}},
		})
		require.ErrorIs(t, err, ledger.ErrInsufficientStock)

		var insufficient *ledger.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "Cheese", insufficient.ProductName)
		assert.Equal(t, 1, insufficient.Shortfall())

		assert.Equal(t, 10, store.StockOf(pid).Quantity)
		assert.Equal(t, 0, store.InvoiceCount())
	})

	t.Run("lines of the same product are checked together", func(t *testing.T) {
		store := ledgertest.New()
		pid := store.AddProduct("Jam")
		store.Seed(pid, "J1", dec("1.00"), nil, 5)

		svc := sale.NewService(store.Sales())

		_, err := svc.Record(ctx, sale.RecordParams{
			Lines: []sale.LineParams{
				{ProductID: pid, Quantity: 3, UnitPrice: dec("2.00")},
				{ProductID: pid, Quantity: 3, UnitPrice: dec("2.00")},
			},
		})
		require.ErrorIs(t, err, ledger.ErrInsufficientStock)
		assert.Equal(t, 5, store.StockOf(pid).Quantity)
	})

	t.Run("failure on a later line rolls back earlier lines", func(t *testing.T) {
		store := ledgertest.New()
		good := store.AddProduct("Good")
		broken := store.AddProduct("Broken")
		store.Seed(good, "G", dec("1.00"), nil, 5)
		store.Seed(broken, "X", dec("1.00"), nil, 2)
		store.SetStockQuantity(broken, 6)

		svc := sale.NewService(store.Sales())

		_, err := svc.Record(ctx, sale.RecordParams{
			Lines: []sale.LineParams{
				{ProductID: good, Quantity: 4, UnitPrice: dec("2.00")},
				{ProductID: broken, Quantity: 5, UnitPrice: dec("2.00")},
			},
		})
		require.ErrorIs(t, err, ledger.ErrInconsistentState)

		assert.Equal(t, 5, store.StockOf(good).Quantity)
		assert.Equal(t, 5, store.BatchesOf(good)[0].Quantity)
		assert.Equal(t, 0, store.InvoiceCount())
	})

	t.Run("missing stock row", func(t *testing.T) {
		store := ledgertest.New()
		pid := store.AddProduct("Nothing")

		_, err := sale.NewService(store.Sales()).Record(ctx, sale.RecordParams{
			Lines: []sale.LineParams{{ProductID: pid, Quantity: 1, UnitPrice: dec("1.00")}},
		})
		assert.ErrorIs(t, err, ledger.ErrMissingLedgerRecord)
	})

	t.Run("duplicate invoice number", func(t *testing.T) {
		store := ledgertest.New()
		pid := store.AddProduct("Water")
		store.Seed(pid, "W", dec("0.10"), nil, 10)

		svc := sale.NewService(store.Sales())
		params := sale.RecordParams{Lines: []sale.LineParams{{ProductID: pid, Quantity: 1, UnitPrice: dec("0.50")}}}

		_, err := svc.Record(ctx, params)
		require.NoError(t, err)

		store.SetInvoiceSequence(0)

		_, err = svc.Record(ctx, params)
		require.ErrorIs(t, err, ledger.ErrDuplicateInvoiceNumber)
		assert.Equal(t, 9, store.StockOf(pid).Quantity)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			params  sale.RecordParams
			wantErr error
		}{
			{
				name:    "no lines",
				params:  sale.RecordParams{},
				wantErr: sale.ErrInvalidInput,
			},
			{
				name:    "zero quantity",
				params:  sale.RecordParams{Lines: []sale.LineParams{{ProductID: 1, Quantity: 0}}},
				wantErr: sale.ErrInvalidInput,
			},
			{
				name: "discount above 100",
				params: sale.RecordParams{
					DiscountRate: dec("101"),
					Lines:        []sale.LineParams{{ProductID: 1, Quantity: 1}},
				},
				wantErr: sale.ErrInvalidRate,
			},
			{
				name:    "negative price",
				params:  sale.RecordParams{Lines: []sale.LineParams{{ProductID: 1, Quantity: 1, UnitPrice: dec("-1")}}},
				wantErr: sale.ErrInvalidPrice,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := sale.NewService(ledgertest.New().Sales()).Record(ctx, tt.params)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})
}

func TestService_Record_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.New()
	pid := store.AddProduct("Coffee")
	store.Seed(pid, "K1", dec("4.00"), expires(20), 10)

	svc := sale.NewService(store.Sales())

	var wg sync.WaitGroup

	errs := make([]error, 2)
	for i := range errs {
		wg.Go(func() {
			_, errs[i] = svc.Record(ctx, sale.RecordParams{
				Lines: []sale.LineParams{{ProductID: pid, Quantity: 6, UnitPrice: dec("9.00")}},
			})
		})
	}

	wg.Wait()

	var ok, insufficient int

	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ledger.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 4, store.StockOf(pid).Quantity)
	assert.Equal(t, 1, store.InvoiceCount())
	assertBalanced(t, store)
}

func TestService_DailySummary(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.New()
	sold := time.Date(2025, time.May, 2, 15, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return sold }

	pid := store.AddProduct("Honey")
	store.Seed(pid, "H", dec("3.00"), nil, 10)

	svc := sale.NewService(store.Sales())

	_, err := svc.Record(ctx, sale.RecordParams{
		Lines: []sale.LineParams{{ProductID: pid, Quantity: 2, UnitPrice: dec("5.00")}},
	})
	require.NoError(t, err)

	got, err := svc.DailySummary(ctx, sold.Truncate(24*time.Hour), sold.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, dec("10.00").Equal(got[0].Revenue))
	assert.True(t, dec("6.00").Equal(got[0].Cost))
	assert.True(t, dec("4.00").Equal(got[0].Profit))
	assert.Equal(t, 1, got[0].Items)

	_, err = svc.DailySummary(ctx, sold, sold)
	assert.ErrorIs(t, err, sale.ErrInvalidInput)
}

type recordingRepo struct {
	sale.Repository
	calls []string
}

func (r *recordingRepo) BeginTx(ctx context.Context) (sale.Tx, error) {
	tx, err := r.Repository.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	return &recordingTx{Tx: tx, repo: r}, nil
}

type recordingTx struct {
	sale.Tx
	repo *recordingRepo
}

func (tx *recordingTx) LockStock(ctx context.Context, productID int64) (ledger.Stock, error) {
	tx.repo.calls = append(tx.repo.calls, "stock")
	return tx.Tx.LockStock(ctx, productID)
}

func (tx *recordingTx) NextInvoiceSequence(ctx context.Context) (int64, error) {
	tx.repo.calls = append(tx.repo.calls, "sequence")
	return tx.Tx.NextInvoiceSequence(ctx)
}

func TestService_Record_LocksSequenceLast(t *testing.T) {
	ctx := context.Background()

	store := ledgertest.New()
	tea := store.AddProduct("Tea")
	rice := store.AddProduct("Rice")
	store.Seed(tea, "T", dec("1.00"), nil, 5)
	store.Seed(rice, "R", dec("2.00"), nil, 5)

	repo := &recordingRepo{Repository: store.Sales()}

	inv, err := sale.NewService(repo).Record(ctx, sale.RecordParams{
		Lines: []sale.LineParams{
			{ProductID: rice, Quantity: 2, UnitPrice: dec("3.00")},
			{ProductID: tea, Quantity: 1, UnitPrice: dec("2.00")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-00001", inv.Number)
	assert.Equal(t, []string{"stock", "stock", "sequence"}, repo.calls)

	require.Len(t, inv.Items, 2)
	for _, item := range inv.Items {
		assert.Equal(t, inv.ID, item.InvoiceID)
	}

	got, err := sale.NewService(store.Sales()).Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assertBalanced(t, store)
}
