package view_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyurdhanani/store-management-project/cmd/tui/internal/view"
)

func TestCommonModel_Resize(t *testing.T) {
	tests := []struct {
		name   string
		height int
		want   int
	}{
		{name: "Tall", height: 40, want: 30},
		{name: "Short", height: 8, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c view.CommonModel

			got := c.Resize(tea.WindowSizeMsg{Width: 120, Height: tt.height})

			assert.Equal(t, tt.want, got)
			assert.Equal(t, 120, c.Width)
			assert.Equal(t, tt.height, c.Height)
		})
	}
}

func TestSaleModel_BackWithoutSale(t *testing.T) {
	m := view.NewSaleModel(nil, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, view.BackMsg{StockChanged: false}, cmd())
}
