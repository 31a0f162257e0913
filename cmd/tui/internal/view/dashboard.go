package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keyurdhanani/store-management-project/internal/report"
)

type DashboardModel struct {
	CommonModel
	reports *report.Service

	dashboard report.Dashboard
	lowStock  []report.LowStockItem
	loading   bool
	err       error
}

func NewDashboardModel(svc *report.Service) DashboardModel {
	return DashboardModel{reports: svc, loading: true}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.dashboard, m.lowStock, m.err = msg.dashboard, msg.lowStock, msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	if m.loading {
		return style.Render("Loading dashboard...")
	}

	if m.err != nil {
		return style.Render(fmt.Sprintf("Error: %v", m.err))
	}

	d := m.dashboard
	lines := []string{
		fmt.Sprintf("Products            %d", d.TotalProducts),
		fmt.Sprintf("Stock value         %s", FormatMoney(d.TotalStockValue)),
		fmt.Sprintf("Low on stock        %d", d.LowStockCount),
		fmt.Sprintf("Revenue (7 days)    %s", FormatMoney(d.RecentRevenue)),
		fmt.Sprintf("Sales (7 days)      %d", d.RecentSalesCount),
	}

	if len(m.lowStock) > 0 {
		lines = append(lines, "", warnStyle.Render("Reorder soon"))
		for _, it := range m.lowStock {
			lines = append(lines, fmt.Sprintf("  %-30s %4d / %d", it.Name, it.Quantity, it.LowStockThreshold))
		}
	}

	lines = append(lines, "", faintStyle.Render(fmt.Sprintf("as of %s", d.GeneratedAt.Local().Format("2006-01-02 15:04"))))
	lines = append(lines, faintStyle.Render(m.ShortHelp()))

	return style.Render(strings.Join(lines, "\n"))
}

type dashboardMsg struct {
	dashboard report.Dashboard
	lowStock  []report.LowStockItem
	err       error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.reports.Dashboard(ctx)
		if err != nil {
			return dashboardMsg{err: err}
		}

		low, err := m.reports.LowStock(ctx)
		return dashboardMsg{dashboard: d, lowStock: low, err: err}
	}
}
