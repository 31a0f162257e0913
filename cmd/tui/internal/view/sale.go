package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
	"github.com/keyurdhanani/store-management-project/internal/sale"
)

// SaleModel records a single-line sale through a form.
type SaleModel struct {
	CommonModel
	ledger *ledger.Service
	sales  *sale.Service

	form      *huh.Form
	submitted bool
	invoice   *sale.Invoice
	err       error

	// Form bindings live behind a pointer so copies of the model share them.
	in *saleInput
}

type saleInput struct {
	productID int64
	quantity  string
	unitPrice string
	customer  string
	discount  string
	tax       string
}

func NewSaleModel(ledgerSvc *ledger.Service, saleSvc *sale.Service) SaleModel {
	return SaleModel{ledger: ledgerSvc, sales: saleSvc, in: &saleInput{discount: "0", tax: "0"}}
}

func (m SaleModel) Title() string     { return "Record Sale" }
func (m SaleModel) ShortHelp() string { return "Esc: back" }

func (m SaleModel) Init() tea.Cmd {
	return m.loadProductsCmd()
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number above zero")
	}
	return nil
}

func decimalField(s string) error {
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a number such as 12.50")
	}
	return nil
}

func (m SaleModel) buildForm(stocks []*ledger.Stock) *huh.Form {
	options := make([]huh.Option[int64], 0, len(stocks))
	for _, s := range stocks {
		if s.Quantity == 0 {
			continue
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d on hand)", s.ProductName, s.Quantity), s.ProductID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Product").
				Options(options...).
				Value(&m.in.productID),
			huh.NewInput().
				Title("Quantity").
				Value(&m.in.quantity).
				Validate(positiveInt),
			huh.NewInput().
				Title("Unit price").
				Value(&m.in.unitPrice).
				Validate(decimalField),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Customer").
				Placeholder("optional").
				Value(&m.in.customer),
			huh.NewInput().
				Title("Discount %").
				Value(&m.in.discount).
				Validate(decimalField),
			huh.NewInput().
				Title("Tax %").
				Value(&m.in.tax).
				Validate(decimalField),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SaleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saleProductsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.form = m.buildForm(msg.stocks)
		return m, m.form.Init()

	case saleRecordedMsg:
		m.invoice, m.err = msg.invoice, msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, backAfter(m.invoice != nil)
		}
	}

	if m.form == nil || m.submitted || m.err != nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.submitted = true

	return m, m.recordCmd()
}

func (m SaleModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	switch {
	case m.err != nil:
		var short *ledger.InsufficientStockError
		if errors.As(m.err, &short) {
			return style.Render(warnStyle.Render(fmt.Sprintf("Only %d left, %d short.", short.Available, short.Shortfall())) +
				"\n\n" + faintStyle.Render(m.ShortHelp()))
		}
		return style.Render(fmt.Sprintf("Error: %v\n\n%s", m.err, faintStyle.Render(m.ShortHelp())))

	case m.invoice != nil:
		inv := m.invoice
		lines := []string{
			fmt.Sprintf("Invoice %s", activeStyle(inv.Number)),
			"",
			fmt.Sprintf("Subtotal  %10s", FormatMoney(inv.Subtotal)),
			fmt.Sprintf("Discount  %10s", FormatMoney(inv.DiscountAmount)),
			fmt.Sprintf("Tax       %10s", FormatMoney(inv.TaxAmount)),
			fmt.Sprintf("Total     %10s", FormatMoney(inv.Total)),
		}

		for _, it := range inv.Items {
			for _, a := range it.Allocations {
				lines = append(lines, faintStyle.Render(fmt.Sprintf("  %d from batch %s", a.Quantity, a.BatchNumber)))
			}
		}

		return style.Render(strings.Join(lines, "\n") + "\n\n" + faintStyle.Render(m.ShortHelp()))

	case m.form == nil:
		return style.Render("Loading products...")
	case m.submitted:
		return style.Render("Recording sale...")
	}

	return style.Render(m.form.View())
}

// Messages

type saleProductsMsg struct {
	stocks []*ledger.Stock
	err    error
}

func (m SaleModel) loadProductsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stocks, err := m.ledger.ListStock(ctx)
		return saleProductsMsg{stocks: stocks, err: err}
	}
}

type saleRecordedMsg struct {
	invoice *sale.Invoice
	err     error
}

func (m SaleModel) recordCmd() tea.Cmd {
	qty, _ := strconv.Atoi(strings.TrimSpace(m.in.quantity))
	params := sale.RecordParams{
		CustomerName: m.in.customer,
		DiscountRate: decimal.RequireFromString(strings.TrimSpace(m.in.discount)),
		TaxRate:      decimal.RequireFromString(strings.TrimSpace(m.in.tax)),
		Lines: []sale.LineParams{{
			ProductID: m.in.productID,
			Quantity:  qty,
			UnitPrice: decimal.RequireFromString(strings.TrimSpace(m.in.unitPrice)),
		}},
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.sales.Record(ctx, params)
		return saleRecordedMsg{invoice: inv, err: err}
	}
}
