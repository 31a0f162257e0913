package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/keyurdhanani/store-management-project/internal/matching"
)

func TestService_Suggest(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		setupMock func(m *matching.MockRepository)
		wantID    int64
		wantOK    bool
		wantErr   bool
	}{
		{
			name: "Match",
			raw:  " PARACETAMOL 500MG CX20 ",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().
					FindMatch(gomock.Any(), "PARACETAMOL 500MG CX20").
					Return(&matching.Mapping{ID: 1, RawPattern: "PARACETAMOL 500", ProductID: 7}, nil)
			},
			wantID: 7,
			wantOK: true,
		},
		{
			name: "NoMatch",
			raw:  "UNKNOWN ITEM",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), "UNKNOWN ITEM").Return(nil, nil)
			},
		},
		{
			name: "BlankSkipsLookup",
			raw:  "   ",
		},
		{
			name: "RepoError",
			raw:  "ITEM",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), "ITEM").Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := matching.NewService(repo)
			id, ok, err := svc.Suggest(context.Background(), tt.raw)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestService_Learn(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		productID int64
		setupMock func(m *matching.MockRepository)
		wantErr   error
	}{
		{
			name:      "Success",
			pattern:   "  IBUPROFENO ",
			productID: 3,
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().
					CreateMapping(gomock.Any(), &matching.Mapping{RawPattern: "IBUPROFENO", ProductID: 3}).
					Return(nil)
			},
		},
		{
			name:      "PatternTooShort",
			pattern:   " IB ",
			productID: 3,
			wantErr:   matching.ErrInvalidPattern,
		},
		{
			name:      "InvalidProduct",
			pattern:   "IBUPROFENO",
			productID: 0,
			wantErr:   matching.ErrUnknownProduct,
		},
		{
			name:      "UnknownProduct",
			pattern:   "IBUPROFENO",
			productID: 99,
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateMapping(gomock.Any(), gomock.Any()).Return(matching.ErrUnknownProduct)
			},
			wantErr: matching.ErrUnknownProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := matching.NewService(repo)
			got, err := svc.Learn(context.Background(), tt.pattern, tt.productID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "IBUPROFENO", got.RawPattern)
		})
	}
}

func TestService_Forget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().DeleteMapping(gomock.Any(), int64(5)).Return(matching.ErrNotFound)

	err := matching.NewService(repo).Forget(context.Background(), 5)
	assert.ErrorIs(t, err, matching.ErrNotFound)
}
