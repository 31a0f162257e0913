package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/keyurdhanani/store-management-project/cmd/tui/internal/view"
	"github.com/keyurdhanani/store-management-project/internal/config"
	"github.com/keyurdhanani/store-management-project/internal/database"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
	ledgerStore "github.com/keyurdhanani/store-management-project/internal/ledger/store"
	"github.com/keyurdhanani/store-management-project/internal/report"
	reportStore "github.com/keyurdhanani/store-management-project/internal/report/store"
	"github.com/keyurdhanani/store-management-project/internal/sale"
	saleStore "github.com/keyurdhanani/store-management-project/internal/sale/store"
)

type model struct {
	ledgerService *ledger.Service
	saleService   *sale.Service
	reportService *report.Service

	currentView View

	stockView     view.StockModel
	saleView      view.SaleModel
	dashboardView view.DashboardModel
}

type View int

const (
	ViewMenu      View = 0
	ViewStock     View = 1
	ViewSale      View = 2
	ViewDashboard View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxOpenConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var cache *report.Cache
	if cfg.Redis.Addr != "" {
		cache = report.NewCache(redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr}), cfg.Redis.CacheTTL)
	}

	ledgerRepo := ledgerStore.New(db, cfg.DB.LockTimeout)
	saleRepo := saleStore.New(db, ledgerRepo)

	ledgerSvc := ledger.NewService(ledgerRepo)
	saleSvc := sale.NewService(saleRepo)
	reportSvc := report.NewService(reportStore.New(db, saleRepo), cache)

	return model{
		ledgerService: ledgerSvc,
		saleService:   saleSvc,
		reportService: reportSvc,
		currentView:   ViewMenu,
		stockView:     view.NewStockModel(ledgerSvc),
		saleView:      view.NewSaleModel(ledgerSvc, saleSvc),
		dashboardView: view.NewDashboardModel(reportSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewStock
				m.stockView = view.NewStockModel(m.ledgerService)

				return m, m.stockView.Init()
			case "2":
				m.currentView = ViewSale
				m.saleView = view.NewSaleModel(m.ledgerService, m.saleService)

				return m, m.saleView.Init()
			case "3":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.reportService)

				return m, m.dashboardView.Init()
			}
		}
	case view.BackMsg:
		if msg.StockChanged {
			m.reportService.Invalidate(context.Background())
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewStock:
		var newModel tea.Model
		newModel, cmd = m.stockView.Update(msg)
		m.stockView = newModel.(view.StockModel)
	case ViewSale:
		var newModel tea.Model
		newModel, cmd = m.saleView.Update(msg)
		m.saleView = newModel.(view.SaleModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Store Console\n\n" +
				"1. Stock & Batches\n" +
				"2. Record Sale\n" +
				"3. Dashboard\n\n" +
				"q. Quit",
		)
	}

	if s := m.screen(); s != nil {
		return s.View()
	}

	return "Unknown View"
}

func (m model) screen() view.Screen {
	switch m.currentView {
	case ViewStock:
		return m.stockView
	case ViewSale:
		return m.saleView
	case ViewDashboard:
		return m.dashboardView
	}

	return nil
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
