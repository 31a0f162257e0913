package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/keyurdhanani/store-management-project/internal/catalog"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validProduct() catalog.ProductParams {
	return catalog.ProductParams{
		Name:         "  Paracetamol 500mg ",
		BasePrice:    dec("2.50"),
		MRP:          dec("3.00"),
		SupplierCost: dec("1.80"),
	}
}

func TestService_CreateProduct(t *testing.T) {
	tests := []struct {
		name      string
		params    func() catalog.ProductParams
		setupMock func(m *catalog.MockRepository)
		wantErr   error
	}{
		{
			name:   "Success",
			params: validProduct,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any(), 5).
					DoAndReturn(func(_ context.Context, p *catalog.Product, _ int) error {
						p.ID = 42
						return nil
					})
			},
		},
		{
			name: "BlankName",
			params: func() catalog.ProductParams {
				p := validProduct()
				p.Name = "   "

				return p
			},
			wantErr: catalog.ErrInvalidInput,
		},
		{
			name: "NameTooLong",
			params: func() catalog.ProductParams {
				p := validProduct()
				p.Name = string(make([]byte, 201))

				return p
			},
			wantErr: catalog.ErrInvalidInput,
		},
		{
			name: "ZeroBasePrice",
			params: func() catalog.ProductParams {
				p := validProduct()
				p.BasePrice = decimal.Zero

				return p
			},
			wantErr: catalog.ErrInvalidPrice,
		},
		{
			name: "NegativeMRP",
			params: func() catalog.ProductParams {
				p := validProduct()
				p.MRP = dec("-1")

				return p
			},
			wantErr: catalog.ErrInvalidPrice,
		},
		{
			name:   "DuplicateName",
			params: validProduct,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any(), 5).
					Return(catalog.ErrDuplicateName)
			},
			wantErr: catalog.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := catalog.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := catalog.NewService(repo, 5)
			got, err := svc.CreateProduct(context.Background(), tt.params())

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(42), got.ID)
			assert.Equal(t, "Paracetamol 500mg", got.Name)
			assert.True(t, got.Active)
			assert.Equal(t, 5, got.LowStockThreshold)
		})
	}
}

func TestNewService_NegativeThresholdFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateProduct(gomock.Any(), gomock.Any(), ledger.DefaultLowStockThreshold).
		Return(nil)

	svc := catalog.NewService(repo, -1)
	_, err := svc.CreateProduct(context.Background(), validProduct())
	require.NoError(t, err)
}

func TestService_UpdateProduct(t *testing.T) {
	existing := func() *catalog.Product {
		return &catalog.Product{ID: 3, Name: "Old", BasePrice: dec("1.00"), Active: true, Quantity: 12}
	}

	tests := []struct {
		name      string
		setupMock func(m *catalog.MockRepository)
		wantErr   error
	}{
		{
			name: "Success",
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetProduct(gomock.Any(), int64(3)).Return(existing(), nil)
				m.EXPECT().
					UpdateProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *catalog.Product) error {
						assert.Equal(t, "Paracetamol 500mg", p.Name)
						assert.True(t, p.BasePrice.Equal(dec("2.50")))
						assert.Equal(t, 12, p.Quantity)

						return nil
					})
			},
		},
		{
			name: "NotFound",
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetProduct(gomock.Any(), int64(3)).Return(nil, catalog.ErrNotFound)
			},
			wantErr: catalog.ErrNotFound,
		},
		{
			name: "RepoError",
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetProduct(gomock.Any(), int64(3)).Return(existing(), nil)
				m.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := catalog.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := catalog.NewService(repo, 10)
			got, err := svc.UpdateProduct(context.Background(), 3, validProduct())

			if tt.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tt.wantErr, catalog.ErrNotFound) {
					assert.ErrorIs(t, err, catalog.ErrNotFound)
				}

				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Paracetamol 500mg", got.Name)
		})
	}
}

func TestService_DeleteProduct_InUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().DeleteProduct(gomock.Any(), int64(9)).Return(catalog.ErrProductInUse)

	svc := catalog.NewService(repo, 10)
	err := svc.DeleteProduct(context.Background(), 9)
	assert.ErrorIs(t, err, catalog.ErrProductInUse)
}

func TestService_Deactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().SetProductActive(gomock.Any(), int64(9), false).Return(nil),
		repo.EXPECT().SetProductActive(gomock.Any(), int64(9), true).Return(nil),
	)

	svc := catalog.NewService(repo, 10)
	require.NoError(t, svc.Deactivate(context.Background(), 9))
	require.NoError(t, svc.Activate(context.Background(), 9))
}

func TestService_ListProducts_TrimsSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().
		ListProducts(gomock.Any(), catalog.ProductFilter{Search: "para"}).
		Return([]*catalog.Product{{ID: 1, Name: "Paracetamol"}}, nil)

	svc := catalog.NewService(repo, 10)
	got, err := svc.ListProducts(context.Background(), catalog.ProductFilter{Search: " para "})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_Categories(t *testing.T) {
	tests := []struct {
		name      string
		params    catalog.CategoryParams
		setupMock func(m *catalog.MockRepository)
		wantErr   error
	}{
		{
			name:   "Create",
			params: catalog.CategoryParams{Name: " Medicines "},
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().
					CreateCategory(gomock.Any(), &catalog.Category{Name: "Medicines"}).
					Return(nil)
			},
		},
		{
			name:    "MissingName",
			params:  catalog.CategoryParams{},
			wantErr: catalog.ErrInvalidInput,
		},
		{
			name:   "Duplicate",
			params: catalog.CategoryParams{Name: "Medicines"},
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(catalog.ErrDuplicateName)
			},
			wantErr: catalog.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := catalog.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := catalog.NewService(repo, 10)
			got, err := svc.CreateCategory(context.Background(), tt.params)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Medicines", got.Name)
		})
	}
}

func TestService_UpdateSupplier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().
		UpdateSupplier(gomock.Any(), &catalog.Supplier{ID: 4, Name: "Acme Pharma", ContactInfo: "acme@example.com"}).
		Return(nil)

	svc := catalog.NewService(repo, 10)
	got, err := svc.UpdateSupplier(context.Background(), 4, catalog.SupplierParams{
		Name:        "Acme Pharma ",
		ContactInfo: "acme@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)

	_, err = svc.UpdateSupplier(context.Background(), 4, catalog.SupplierParams{})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}
