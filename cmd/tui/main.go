package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/app"
	"github.com/rovshanmuradov/vault-browser/internal/config"
	"github.com/rovshanmuradov/vault-browser/internal/logger"
	"github.com/rovshanmuradov/vault-browser/internal/ui"
	"github.com/rovshanmuradov/vault-browser/internal/ui/router"
	"github.com/rovshanmuradov/vault-browser/internal/ui/screen"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// AppModel represents the main TUI application model
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// NewAppModel creates the application model with the vault list as root.
func NewAppModel(deps screen.Deps) *AppModel {
	return &AppModel{
		router: router.New(screen.NewVaultListScreen(deps), screen.NewFactory(deps)),
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return m.router.Init()
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	updated, cmd := m.router.Update(msg)
	m.router = updated.(*router.Router)
	return m, cmd
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.router.View()
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The terminal belongs to bubbletea, so logs go to a file and the ring
	// buffer the screens read from.
	logs := logger.NewLogBuffer(500)
	appLogger, closeLog, err := logger.NewTUILogger(cfg.LogFile, cfg.DebugLogging, logs)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = closeLog()
	}()

	appLogger.Info("Starting vault browser TUI")

	runner, err := app.NewRunner(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize", zap.Error(err))
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = runner.Close(context.Background())
	}()
	runner.Warm(rootCtx)

	publisher := ui.NewPublisher(ui.Bus, appLogger)
	defer publisher.Close()
	runner.Refresher().OnScheduled(publisher.Scheduled)

	// The list screen fetches on start, so scheduled refreshes begin one
	// interval later.
	go func() {
		select {
		case <-rootCtx.Done():
			return
		case <-time.After(cfg.RefreshInterval):
		}
		runner.Refresher().Run(rootCtx)
	}()

	deps := screen.Deps{
		Catalog:   runner.Catalog(),
		Fetcher:   runner.Refresher(),
		Resolver:  runner.Resolver(),
		Exporter:  runner.Exporter(),
		ExportDir: cfg.ExportDir,
		Logs:      logs,
		Criteria: vault.Criteria{
			Chains:     cfg.Chains,
			MinimumTVL: cfg.MinimumTVL,
			ShowEOL:    cfg.ShowEOL,
		},
		Timeout: cfg.RequestTimeout,
		Logger:  appLogger,
	}

	handler := ui.NewRecoveryHandler(appLogger, func() (tea.Model, []tea.ProgramOption) {
		return ui.NewSafeModel(NewAppModel(deps), appLogger), []tea.ProgramOption{tea.WithAltScreen()}
	})
	if err := handler.Run(rootCtx); err != nil {
		appLogger.Error("TUI application failed", zap.Error(err))
		log.Fatalf("TUI application failed: %v", err)
	}

	appLogger.Info("Shutting down TUI application")
}
