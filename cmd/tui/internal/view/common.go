package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// chromeRows is the space taken by the header, borders and help line around a table.
	chromeRows   = 10
	minTableRows = 5
)

// Screen is implemented by every console screen reachable from the menu.
type Screen interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel holds the terminal size shared by all screens.
type CommonModel struct {
	Width  int
	Height int
}

// Resize stores the terminal size and returns the number of rows left for a table body.
func (c *CommonModel) Resize(msg tea.WindowSizeMsg) int {
	c.Width, c.Height = msg.Width, msg.Height
	return max(c.Height-chromeRows, minTableRows)
}

// BackMsg returns the console to the menu. StockChanged is set when the screen recorded ledger
// movements, which leaves cached reports stale.
type BackMsg struct {
	StockChanged bool
}

func Back() tea.Msg {
	return BackMsg{}
}

func backAfter(stockChanged bool) tea.Cmd {
	return func() tea.Msg { return BackMsg{StockChanged: stockChanged} }
}
