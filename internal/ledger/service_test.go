package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

func TestService_UpdateSettings(t *testing.T) {
	tests := []struct {
		name      string
		settings  ledger.StockSettings
		setupMock func(m *ledger.MockRepository)
		wantErr   error
	}{
		{
			name:     "Success",
			settings: ledger.StockSettings{LowStockThreshold: 5, ExpiryDate: day(20)},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					UpdateStockSettings(gomock.Any(), int64(7), ledger.StockSettings{LowStockThreshold: 5, ExpiryDate: day(20)}).
					Return(nil)
			},
		},
		{
			name:     "NegativeThreshold",
			settings: ledger.StockSettings{LowStockThreshold: -1},
			wantErr:  ledger.ErrInvalidThreshold,
		},
		{
			name:     "MissingStock",
			settings: ledger.StockSettings{LowStockThreshold: 0},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					UpdateStockSettings(gomock.Any(), int64(7), gomock.Any()).
					Return(ledger.ErrMissingLedgerRecord)
			},
			wantErr: ledger.ErrMissingLedgerRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo)
			err := svc.UpdateSettings(context.Background(), 7, tt.settings)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_StockLevel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().
		GetStock(gomock.Any(), int64(3)).
		Return(&ledger.Stock{ProductID: 3, Quantity: 4, LowStockThreshold: 10}, nil)

	svc := ledger.NewService(repo)

	got, err := svc.StockLevel(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
	assert.True(t, got.LowStock())
}

func TestService_Reconcile(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m *ledger.MockRepository)
		want      []ledger.Drift
		wantErr   bool
	}{
		{
			name: "Balanced",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().ListDrift(gomock.Any()).Return(nil, nil)
			},
		},
		{
			name: "DriftReported",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().ListDrift(gomock.Any()).Return([]ledger.Drift{
					{ProductID: 1, ProductName: "Milk", Stock: 8, BatchTotal: 6},
				}, nil)
			},
			want: []ledger.Drift{{ProductID: 1, ProductName: "Milk", Stock: 8, BatchTotal: 6}},
		},
		{
			name: "RepoError",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().ListDrift(gomock.Any()).Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := ledger.NewService(repo)
			got, err := svc.Reconcile(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStock_LowStock(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     bool
	}{
		{name: "SoldOut", quantity: 0, want: false},
		{name: "BelowThreshold", quantity: 3, want: true},
		{name: "AtThreshold", quantity: 10, want: true},
		{name: "AboveThreshold", quantity: 11, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledger.Stock{ProductID: 1, Quantity: tt.quantity, LowStockThreshold: 10}
			assert.Equal(t, tt.want, s.LowStock())
		})
	}
}
