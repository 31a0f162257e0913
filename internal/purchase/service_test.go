package purchase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
	"github.com/keyurdhanani/store-management-project/internal/ledger/ledgertest"
	"github.com/keyurdhanani/store-management-project/internal/purchase"
)

func setup(t *testing.T) (*ledgertest.Store, *purchase.Service, int64) {
	t.Helper()

	store := ledgertest.New()
	pid := store.AddProduct("Yogurt")

	return store, purchase.NewService(store.Purchases()), pid
}

func assertBalanced(t *testing.T, store *ledgertest.Store) {
	t.Helper()

	drift, err := store.ListDrift(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()
	expiry := new(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

	t.Run("creates stock and batch", func(t *testing.T) {
		store, svc, pid := setup(t)

		p, err := svc.Record(ctx, purchase.RecordParams{
			ProductID:   pid,
			Quantity:    12,
			UnitCost:    decimal.RequireFromString("0.80"),
			BatchNumber: "Y-001",
			ExpiryDate:  expiry,
		})
		require.NoError(t, err)

		assert.NotZero(t, p.ID)
		require.NotNil(t, p.BatchID)
		assert.Equal(t, "Y-001", p.BatchNumber)
		assert.True(t, decimal.RequireFromString("9.60").Equal(p.Total()))

		assert.Equal(t, 12, store.StockOf(pid).Quantity)

		batches := store.BatchesOf(pid)
		require.Len(t, batches, 1)
		assert.Equal(t, *p.BatchID, batches[0].ID)
		assert.Equal(t, 12, batches[0].Quantity)
		assertBalanced(t, store)
	})

	t.Run("same batch number accumulates", func(t *testing.T) {
		store, svc, pid := setup(t)

		for _, cost := range []string{"1.00", "1.20"} {
			_, err := svc.Record(ctx, purchase.RecordParams{
				ProductID:   pid,
				Quantity:    5,
				UnitCost:    decimal.RequireFromString(cost),
				BatchNumber: "LOT",
			})
			require.NoError(t, err)
		}

		batches := store.BatchesOf(pid)
		require.Len(t, batches, 1)
		assert.Equal(t, 10, batches[0].Quantity)
		assert.True(t, decimal.RequireFromString("1.20").Equal(batches[0].CostPrice))
		assert.Equal(t, 10, store.StockOf(pid).Quantity)
	})

	t.Run("batch number defaults to the invoice number", func(t *testing.T) {
		_, svc, pid := setup(t)

		p, err := svc.Record(ctx, purchase.RecordParams{
			ProductID:     pid,
			Quantity:      1,
			UnitCost:      decimal.NewFromInt(1),
			InvoiceNumber: " SUP-77 ",
		})
		require.NoError(t, err)
		assert.Equal(t, "SUP-77", p.BatchNumber)
	})

	t.Run("batch number is generated when nothing is given", func(t *testing.T) {
		_, svc, pid := setup(t)

		p, err := svc.Record(ctx, purchase.RecordParams{
			ProductID: pid,
			Quantity:  1,
			UnitCost:  decimal.NewFromInt(1),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(p.BatchNumber, "AUTO-"), p.BatchNumber)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			params  purchase.RecordParams
			wantErr error
		}{
			{
				name:    "zero quantity",
				params:  purchase.RecordParams{ProductID: 1, Quantity: 0, UnitCost: decimal.NewFromInt(1)},
				wantErr: purchase.ErrInvalidInput,
			},
			{
				name:    "missing product",
				params:  purchase.RecordParams{Quantity: 1, UnitCost: decimal.NewFromInt(1)},
				wantErr: purchase.ErrInvalidInput,
			},
			{
				name:    "cost below a cent",
				params:  purchase.RecordParams{ProductID: 1, Quantity: 1, UnitCost: decimal.RequireFromString("0.001")},
				wantErr: purchase.ErrInvalidUnitCost,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store, svc, _ := setup(t)

				_, err := svc.Record(ctx, tt.params)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.BatchesOf(1))
			})
		}
	})

	t.Run("unknown product rolls back", func(t *testing.T) {
		store, svc, _ := setup(t)

		_, err := svc.Record(ctx, purchase.RecordParams{ProductID: 999, Quantity: 3, UnitCost: decimal.NewFromInt(1)})
		require.ErrorIs(t, err, ledger.ErrMissingLedgerRecord)
		assert.False(t, store.HasStock(999))
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("record then delete restores prior state", func(t *testing.T) {
		store, svc, pid := setup(t)
		store.Seed(pid, "OLD", decimal.NewFromInt(1), nil, 4)

		p, err := svc.Record(ctx, purchase.RecordParams{
			ProductID:   pid,
			Quantity:    6,
			UnitCost:    decimal.NewFromInt(2),
			BatchNumber: "NEW",
		})
		require.NoError(t, err)
		require.Equal(t, 10, store.StockOf(pid).Quantity)

		require.NoError(t, svc.Delete(ctx, p.ID))

		assert.Equal(t, 4, store.StockOf(pid).Quantity)

		batches := store.BatchesOf(pid)
		require.Len(t, batches, 1)
		assert.Equal(t, "OLD", batches[0].Number)

		_, err = svc.Get(ctx, p.ID)
		assert.ErrorIs(t, err, purchase.ErrNotFound)
		assertBalanced(t, store)
	})

	t.Run("partially sold batch only reverses what is left", func(t *testing.T) {
		store, svc, pid := setup(t)

		p, err := svc.Record(ctx, purchase.RecordParams{
			ProductID:   pid,
			Quantity:    10,
			UnitCost:    decimal.NewFromInt(1),
			BatchNumber: "B",
		})
		require.NoError(t, err)

		tx, err := store.Begin(ctx)
		require.NoError(t, err)
		_, err = ledger.Deduct(ctx, tx, pid, 7)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		require.NoError(t, svc.Delete(ctx, p.ID))

		assert.Equal(t, 0, store.StockOf(pid).Quantity)
		assert.Empty(t, store.BatchesOf(pid))
		assertBalanced(t, store)
	})

	t.Run("missing batch is skipped", func(t *testing.T) {
		store, svc, pid := setup(t)

		p, err := svc.Record(ctx, purchase.RecordParams{
			ProductID:   pid,
			Quantity:    5,
			UnitCost:    decimal.NewFromInt(2),
			BatchNumber: "GONE",
		})
		require.NoError(t, err)
		require.NotNil(t, p.BatchID)

		store.DropBatch(*p.BatchID)

		require.NoError(t, svc.Delete(ctx, p.ID))

		assert.Equal(t, 5, store.StockOf(pid).Quantity)

		_, err = svc.Get(ctx, p.ID)
		assert.ErrorIs(t, err, purchase.ErrNotFound)
	})

	t.Run("missing stock is skipped", func(t *testing.T) {
		store, svc, pid := setup(t)

		p, err := svc.Record(ctx, purchase.RecordParams{
			ProductID:   pid,
			Quantity:    5,
			UnitCost:    decimal.NewFromInt(2),
			BatchNumber: "S",
		})
		require.NoError(t, err)

		store.DropStock(pid)

		require.NoError(t, svc.Delete(ctx, p.ID))

		assert.False(t, store.HasStock(pid))
		assert.Empty(t, store.BatchesOf(pid))

		_, err = svc.Get(ctx, p.ID)
		assert.ErrorIs(t, err, purchase.ErrNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		_, svc, _ := setup(t)

		err := svc.Delete(ctx, 42)
		assert.ErrorIs(t, err, purchase.ErrNotFound)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	record := func(t *testing.T, svc *purchase.Service, pid int64, qty int) *purchase.Purchase {
		t.Helper()

		p, err := svc.Record(ctx, purchase.RecordParams{
			ProductID:   pid,
			Quantity:    qty,
			UnitCost:    decimal.NewFromInt(3),
			BatchNumber: "U",
		})
		require.NoError(t, err)

		return p
	}

	t.Run("increase", func(t *testing.T) {
		store, svc, pid := setup(t)
		p := record(t, svc, pid, 5)

		got, err := svc.Update(ctx, p.ID, purchase.UpdateParams{Quantity: 8, UnitCost: decimal.NewFromInt(4)})
		require.NoError(t, err)

		assert.Equal(t, 8, got.Quantity)
		assert.Equal(t, "U", got.BatchNumber)
		assert.Equal(t, 8, store.StockOf(pid).Quantity)

		batches := store.BatchesOf(pid)
		require.Len(t, batches, 1)
		assert.Equal(t, 8, batches[0].Quantity)
		assert.True(t, decimal.NewFromInt(4).Equal(batches[0].CostPrice))
		assertBalanced(t, store)
	})

	t.Run("decrease", func(t *testing.T) {
		store, svc, pid := setup(t)
		p := record(t, svc, pid, 5)

		_, err := svc.Update(ctx, p.ID, purchase.UpdateParams{Quantity: 2, UnitCost: decimal.NewFromInt(3)})
		require.NoError(t, err)

		assert.Equal(t, 2, store.StockOf(pid).Quantity)
		assert.Equal(t, 2, store.BatchesOf(pid)[0].Quantity)
		assertBalanced(t, store)
	})

	t.Run("decrease below what is left empties and unlinks the batch", func(t *testing.T) {
		store, svc, pid := setup(t)
		p := record(t, svc, pid, 5)

		tx, err := store.Begin(ctx)
		require.NoError(t, err)
		_, err = ledger.Deduct(ctx, tx, pid, 4)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		got, err := svc.Update(ctx, p.ID, purchase.UpdateParams{Quantity: 1, UnitCost: decimal.NewFromInt(3)})
		require.NoError(t, err)

		assert.Nil(t, got.BatchID)
		assert.Equal(t, 0, store.StockOf(pid).Quantity)
		assert.Empty(t, store.BatchesOf(pid))
		assertBalanced(t, store)
	})

	t.Run("increase without a batch is refused", func(t *testing.T) {
		store, svc, pid := setup(t)
		p := record(t, svc, pid, 5)

		require.NoError(t, svc.Delete(ctx, p.ID))
		p2 := record(t, svc, pid, 3)

		tx, err := store.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.DeleteBatch(ctx, *p2.BatchID))
		require.NoError(t, tx.AddStock(ctx, pid, -3))
		require.NoError(t, tx.Commit())

		_, err = svc.Update(ctx, p2.ID, purchase.UpdateParams{Quantity: 4, UnitCost: decimal.NewFromInt(3)})
		assert.ErrorIs(t, err, ledger.ErrMissingLedgerRecord)
		assert.Equal(t, 0, store.StockOf(pid).Quantity)
	})

	t.Run("renaming onto another batch number is a conflict", func(t *testing.T) {
		store, svc, pid := setup(t)

		a, err := svc.Record(ctx, purchase.RecordParams{ProductID: pid, Quantity: 2, UnitCost: decimal.NewFromInt(3), BatchNumber: "A"})
		require.NoError(t, err)
		_, err = svc.Record(ctx, purchase.RecordParams{ProductID: pid, Quantity: 4, UnitCost: decimal.NewFromInt(3), BatchNumber: "B"})
		require.NoError(t, err)

		_, err = svc.Update(ctx, a.ID, purchase.UpdateParams{Quantity: 2, UnitCost: decimal.NewFromInt(3), BatchNumber: "B"})
		assert.ErrorIs(t, err, ledger.ErrDuplicateBatchNumber)

		got, err := svc.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", got.BatchNumber)
		assert.Equal(t, 6, store.StockOf(pid).Quantity)
		assertBalanced(t, store)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	_, svc, pid := setup(t)

	for range 3 {
		_, err := svc.Record(ctx, purchase.RecordParams{ProductID: pid, Quantity: 1, UnitCost: decimal.NewFromInt(1)})
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, purchase.ListFilter{ProductID: &pid})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Greater(t, got[0].ID, got[2].ID, "newest first")
	assert.Equal(t, "Yogurt", got[0].ProductName)
}
