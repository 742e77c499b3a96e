package ui

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// ProgramFactory builds a fresh model and its program options for one run.
type ProgramFactory func() (tea.Model, []tea.ProgramOption)

// RecoveryHandler runs the TUI and restarts it after a crash, up to a limit.
type RecoveryHandler struct {
	logger       *zap.Logger
	restartDelay time.Duration
	maxRestarts  int
	restartCount int
	mu           sync.Mutex
	program      *tea.Program
	create       ProgramFactory
}

// NewRecoveryHandler creates a new recovery handler
func NewRecoveryHandler(logger *zap.Logger, create ProgramFactory) *RecoveryHandler {
	return &RecoveryHandler{
		logger:       logger.Named("ui"),
		restartDelay: 2 * time.Second,
		maxRestarts:  5,
		create:       create,
	}
}

// Run runs the UI until it exits normally, ctx is cancelled, or it has
// crashed more than maxRestarts times.
func (rh *RecoveryHandler) Run(ctx context.Context) error {
	for {
		err := rh.runOnce(ctx)
		if err == nil || ctx.Err() != nil {
			return nil
		}

		rh.mu.Lock()
		rh.restartCount++
		count := rh.restartCount
		rh.mu.Unlock()

		if count > rh.maxRestarts {
			return fmt.Errorf("UI crashed too many times (%d), giving up: %w", rh.maxRestarts, err)
		}

		rh.logger.Error("UI crashed, will restart",
			zap.Error(err),
			zap.Int("restart_count", count),
			zap.Duration("delay", rh.restartDelay))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(rh.restartDelay):
		}
	}
}

// runOnce runs one program. A panic escaping bubbletea is turned into an error.
func (rh *RecoveryHandler) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("UI panic: %v", r)
			rh.logger.Error("UI panic recovered",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	model, opts := rh.create()
	program := tea.NewProgram(model, append(opts, tea.WithContext(ctx))...)

	rh.mu.Lock()
	rh.program = program
	rh.mu.Unlock()

	_, err = program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("UI error: %w", err)
	}
	return err
}

// Stop quits the running program.
func (rh *RecoveryHandler) Stop() {
	rh.mu.Lock()
	defer rh.mu.Unlock()

	if rh.program != nil {
		rh.program.Quit()
		rh.program = nil
	}
}

// Restarts returns the number of restarts so far.
func (rh *RecoveryHandler) Restarts() int {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	return rh.restartCount
}

// SafeModel keeps a panicking Init, Update or View from tearing down the
// terminal. The panic is logged and the model carries on.
type SafeModel struct {
	model  tea.Model
	logger *zap.Logger
}

// NewSafeModel wraps model.
func NewSafeModel(model tea.Model, logger *zap.Logger) *SafeModel {
	return &SafeModel{
		model:  model,
		logger: logger,
	}
}

// Init wraps the Init method with panic recovery
func (sm *SafeModel) Init() (cmd tea.Cmd) {
	defer sm.recoverFromPanic("Init", &cmd)
	return sm.model.Init()
}

// Update wraps the Update method with panic recovery
func (sm *SafeModel) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer sm.recoverFromPanic("Update", &cmd)
	model = sm
	next, cmd := sm.model.Update(msg)
	sm.model = next
	return sm, cmd
}

// View wraps the View method with panic recovery
func (sm *SafeModel) View() (view string) {
	defer func() {
		if r := recover(); r != nil {
			sm.logger.Error("View panic recovered",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			view = "UI Error: view crashed. Press q to quit."
		}
	}()
	return sm.model.View()
}

func (sm *SafeModel) recoverFromPanic(method string, cmd *tea.Cmd) {
	if r := recover(); r != nil {
		sm.logger.Error("UI method panic recovered",
			zap.String("method", method),
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())))
		*cmd = nil
	}
}
