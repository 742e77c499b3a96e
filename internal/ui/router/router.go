package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/vault-browser/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Factory builds the screen a navigation message points to. It returns nil
// for destinations that cannot be shown, e.g. an unknown vault id.
type Factory func(msg ui.RouterMsg) Screen

// Router manages navigation between screens using a stack-based approach
type Router struct {
	stack   []Screen
	factory Factory
	width   int
	height  int
}

// New creates a new router with the initial screen
func New(initialScreen Screen, factory Factory) *Router {
	return &Router{
		stack:   []Screen{initialScreen},
		factory: factory,
	}
}

// Init initializes the root screen and starts listening to the bus
func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return ui.ListenBus()
	}
	return tea.Batch(r.stack[len(r.stack)-1].Init(), ui.ListenBus())
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.RouterMsg:
		return r, r.navigate(msg)

	case ui.BusMsg:
		return r, tea.Batch(r.broadcast(msg.Msg), ui.ListenBus())

	case ui.VaultsLoadedMsg:
		// Every screen on the stack renders the catalog.
		return r, r.broadcast(msg)

	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && len(r.stack) > 1 {
			return r, r.Back()
		}
	}

	return r, r.updateCurrent(msg)
}

func (r *Router) navigate(msg ui.RouterMsg) tea.Cmd {
	if r.factory == nil {
		return nil
	}
	if msg.To == ui.RouteVaultList {
		return r.Clear()
	}
	screen := r.factory(msg)
	if screen == nil {
		return nil
	}
	return r.Push(screen)
}

func (r *Router) updateCurrent(msg tea.Msg) tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	top := len(r.stack) - 1
	updated, cmd := r.stack[top].Update(msg)
	r.stack[top] = updated
	return cmd
}

func (r *Router) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(r.stack))
	for i, screen := range r.stack {
		updated, cmd := screen.Update(msg)
		r.stack[i] = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// View renders the current screen
func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.stack[len(r.stack)-1].View()
}

// SetSize sets the size for the router and current screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height

	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].SetSize(width, height)
	}
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen from the stack
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil // Can't pop the last screen
	}

	r.stack = r.stack[:len(r.stack)-1]

	// The screen below may have missed a resize.
	r.stack[len(r.stack)-1].SetSize(r.width, r.height)
	return nil
}

// Back navigates back to the previous screen
func (r *Router) Back() tea.Cmd {
	return r.Pop()
}

// Current returns the current screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}

// Clear removes all screens except the first one
func (r *Router) Clear() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}

	r.stack = r.stack[:1]
	r.stack[0].SetSize(r.width, r.height)
	return nil
}

// CanGoBack returns true if there are screens to go back to
func (r *Router) CanGoBack() bool {
	return len(r.stack) > 1
}
