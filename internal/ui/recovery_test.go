package ui

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingMsg struct{}

// mockModel quits on its first message unless told to panic.
type mockModel struct {
	panicOnUpdate bool
	panicOnView   bool
	updates       int32
}

func (m *mockModel) Init() tea.Cmd {
	return func() tea.Msg { return pingMsg{} }
}

func (m *mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	atomic.AddInt32(&m.updates, 1)
	if m.panicOnUpdate {
		panic("update panic test")
	}
	if _, ok := msg.(pingMsg); ok {
		return m, tea.Quit
	}
	return m, nil
}

func (m *mockModel) View() string {
	if m.panicOnView {
		panic("view panic test")
	}
	return "Test UI"
}

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
		tea.WithoutCatchPanics(),
	}
}

func TestRecoveryHandlerNormalExit(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{}, headless()
	})

	require.NoError(t, handler.Run(context.Background()))
	assert.Equal(t, 0, handler.Restarts())
}

func TestRecoveryHandlerRestartsAfterPanic(t *testing.T) {
	var runs atomic.Int32
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{panicOnUpdate: runs.Add(1) == 1}, headless()
	})
	handler.restartDelay = 10 * time.Millisecond

	require.NoError(t, handler.Run(context.Background()))
	assert.Equal(t, 1, handler.Restarts())
	assert.Equal(t, int32(2), runs.Load())
}

func TestRecoveryHandlerGivesUp(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{panicOnUpdate: true}, headless()
	})
	handler.restartDelay = time.Millisecond
	handler.maxRestarts = 2

	err := handler.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many times")
	assert.Equal(t, 3, handler.Restarts())
}

func TestRecoveryHandlerStopsOnCancel(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{panicOnUpdate: true}, headless()
	})
	handler.restartDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- handler.Run(ctx) }()

	require.Eventually(t, func() bool { return handler.Restarts() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSafeModel(t *testing.T) {
	model := &mockModel{}
	safe := NewSafeModel(model, zap.NewNop())

	assert.NotNil(t, safe.Init())
	assert.Equal(t, "Test UI", safe.View())

	next, cmd := safe.Update(pingMsg{})
	assert.Same(t, safe, next)
	assert.NotNil(t, cmd)

	model.panicOnUpdate = true
	next, cmd = safe.Update(pingMsg{})
	assert.Same(t, safe, next)
	assert.Nil(t, cmd)

	model.panicOnView = true
	assert.Contains(t, safe.View(), "view crashed")
}
