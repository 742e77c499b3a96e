package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To      Route
	VaultID string // set for RouteVaultDetail
}

// VaultsLoadedMsg carries the result of a fetch.
type VaultsLoadedMsg struct {
	Snapshot *vault.Snapshot
	Err      error
}

// ExportedMsg reports where the visible list was written.
type ExportedMsg struct {
	Path string
	Err  error
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// SuccessMsg represents success conditions
type SuccessMsg struct {
	Message string
	Title   string
}

// BusMsg wraps a message that arrived through Bus.
type BusMsg struct {
	Msg tea.Msg
}

// Event Bus for UI communication
var (
	// Bus carries messages produced outside the bubbletea loop,
	// e.g. by the background refresher.
	Bus = make(chan BusMsg, 1024)
)

// ListenBus returns a tea.Cmd that waits for the next BusMsg. The receiver
// re-arms it after every delivery.
func ListenBus() tea.Cmd {
	return func() tea.Msg {
		return <-Bus
	}
}

// Route represents different screens in the application
type Route int

const (
	RouteVaultList Route = iota
	RouteVaultDetail
)

// String returns the path of the route
func (r Route) String() string {
	switch r {
	case RouteVaultList:
		return "/"
	case RouteVaultDetail:
		return "/vault"
	default:
		return "unknown"
	}
}

// Path returns the location a navigation message points to.
func (m RouterMsg) Path() string {
	if m.To == RouteVaultDetail {
		return RouteVaultDetail.String() + "/" + m.VaultID
	}
	return m.To.String()
}
