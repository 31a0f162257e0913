package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

type stockState int

const (
	stockStateList stockState = iota
	stockStateBatches
)

// StockModel lists stock levels and, for the selected product, its batches in FEFO order.
type StockModel struct {
	CommonModel
	ledger *ledger.Service

	state   stockState
	table   table.Model
	batches table.Model
	stocks  []*ledger.Stock
	product *ledger.Stock

	loading bool
	err     error
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func NewStockModel(svc *ledger.Service) StockModel {
	return StockModel{
		ledger: svc,
		table: newTable([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Product", Width: 32},
			{Title: "Qty", Width: 8},
			{Title: "Alert at", Width: 9},
			{Title: "Low", Width: 5},
		}),
		batches: newTable([]table.Column{
			{Title: "Batch", Width: 20},
			{Title: "Expiry", Width: 12},
			{Title: "Qty", Width: 8},
			{Title: "Cost", Width: 10},
		}),
		loading: true,
	}
}

func (m StockModel) Title() string { return "Stock" }
func (m StockModel) ShortHelp() string {
	if m.state == stockStateBatches {
		return "Esc: back to stock"
	}
	return "Esc: back | Enter: batches | r: refresh"
}

func (m StockModel) Init() tea.Cmd {
	return m.loadStockCmd()
}

func (m StockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadStockMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.stocks = msg.stocks
		m.refreshStock()
		return m, nil

	case loadBatchesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.refreshBatches(msg.batches)
		m.state = stockStateBatches
		return m, nil

	case tea.WindowSizeMsg:
		rows := m.Resize(msg)
		m.table.SetHeight(rows)
		m.batches.SetHeight(rows)
		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	if m.state == stockStateBatches {
		if isKey && keyMsg.String() == "esc" {
			m.state = stockStateList
			m.product = nil
			return m, nil
		}

		var cmd tea.Cmd
		m.batches, cmd = m.batches.Update(msg)
		return m, cmd
	}

	if isKey {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadStockCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.stocks) {
				return m, nil
			}
			m.product = m.stocks[idx]
			return m, m.loadBatchesCmd(m.product.ProductID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m StockModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading stock...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	if m.state == stockStateBatches && m.product != nil {
		header := fmt.Sprintf("Batches of %s (next to sell first)", activeStyle(m.product.ProductName))
		return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			border.Render(m.batches.View()),
			faintStyle.Render(m.ShortHelp()),
		))
	}

	low := 0
	for _, s := range m.stocks {
		if s.LowStock() {
			low++
		}
	}

	header := fmt.Sprintf("%d products", len(m.stocks))
	if low > 0 {
		header += " | " + warnStyle.Render(fmt.Sprintf("%d low on stock", low))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		border.Render(m.table.View()),
		faintStyle.Render(m.ShortHelp()),
	))
}

func (m *StockModel) refreshStock() {
	rows := make([]table.Row, 0, len(m.stocks))
	for _, s := range m.stocks {
		flag := ""
		if s.LowStock() {
			flag = "!"
		}

		rows = append(rows, table.Row{
			strconv.FormatInt(s.ProductID, 10),
			s.ProductName,
			strconv.Itoa(s.Quantity),
			strconv.Itoa(s.LowStockThreshold),
			flag,
		})
	}
	m.table.SetRows(rows)
}

func (m *StockModel) refreshBatches(batches []*ledger.Batch) {
	rows := make([]table.Row, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, table.Row{
			b.Number,
			FormatDate(b.ExpiryDate),
			strconv.Itoa(b.Quantity),
			FormatMoney(b.CostPrice),
		})
	}
	m.batches.SetRows(rows)
	m.batches.GotoTop()
}

// Messages

type loadStockMsg struct {
	stocks []*ledger.Stock
	err    error
}

func (m StockModel) loadStockCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stocks, err := m.ledger.ListStock(ctx)
		return loadStockMsg{stocks: stocks, err: err}
	}
}

type loadBatchesMsg struct {
	batches []*ledger.Batch
	err     error
}

func (m StockModel) loadBatchesCmd(productID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		batches, err := m.ledger.ActiveBatches(ctx, productID)
		return loadBatchesMsg{batches: batches, err: err}
	}
}
