package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/vault-browser/internal/ui"
)

type stubScreen struct {
	name   string
	inits  int
	width  int
	height int
	msgs   []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.msgs = append(s.msgs, msg)
	return s, nil
}

func (s *stubScreen) View() string { return s.name }

func (s *stubScreen) SetSize(width, height int) {
	s.width, s.height = width, height
}

func newTestRouter() (*Router, *stubScreen) {
	root := &stubScreen{name: "list"}
	r := New(root, func(msg ui.RouterMsg) Screen {
		if msg.VaultID == "" {
			return nil
		}
		return &stubScreen{name: "detail " + msg.VaultID}
	})
	return r, root
}

func TestRouterNavigatesAndGoesBack(t *testing.T) {
	r, root := newTestRouter()
	r.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 100, root.width)

	r.Update(ui.RouterMsg{To: ui.RouteVaultDetail, VaultID: "a"})
	require.Equal(t, 2, r.Depth())
	assert.Equal(t, "detail a", r.View())

	detail := r.Current().(*stubScreen)
	assert.Equal(t, 1, detail.inits)
	assert.Equal(t, 30, detail.height, "pushed screens get the current size")

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "list", r.View())
	assert.False(t, r.CanGoBack())
}

func TestRouterEscOnRootReachesScreen(t *testing.T) {
	r, root := newTestRouter()
	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	require.Len(t, root.msgs, 1)
}

func TestRouterIgnoresUnbuildableDestinations(t *testing.T) {
	r, _ := newTestRouter()
	r.Update(ui.RouterMsg{To: ui.RouteVaultDetail})
	assert.Equal(t, 1, r.Depth())
}

func TestRouterListRouteClearsStack(t *testing.T) {
	r, _ := newTestRouter()
	r.Update(ui.RouterMsg{To: ui.RouteVaultDetail, VaultID: "a"})
	r.Update(ui.RouterMsg{To: ui.RouteVaultDetail, VaultID: "b"})
	assert.Equal(t, 3, r.Depth())

	r.Update(ui.RouterMsg{To: ui.RouteVaultList})
	assert.Equal(t, 1, r.Depth())
}

func TestRouterBroadcastsCatalogUpdates(t *testing.T) {
	r, root := newTestRouter()
	r.Update(ui.RouterMsg{To: ui.RouteVaultDetail, VaultID: "a"})
	detail := r.Current().(*stubScreen)

	loaded := ui.VaultsLoadedMsg{}
	_, cmd := r.Update(ui.BusMsg{Msg: loaded})
	assert.NotNil(t, cmd, "the bus listener is re-armed")
	assert.Equal(t, []tea.Msg{loaded}, root.msgs)
	assert.Equal(t, []tea.Msg{loaded}, detail.msgs)

	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Len(t, root.msgs, 1, "keys only reach the top screen")
	assert.Len(t, detail.msgs, 2)
}
