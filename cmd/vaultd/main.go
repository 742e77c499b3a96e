package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/app"
	"github.com/rovshanmuradov/vault-browser/internal/config"
	"github.com/rovshanmuradov/vault-browser/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.CreatePrettyLogger(cfg.DebugLogging, os.Stdout)
	defer func() {
		_ = appLogger.Sync()
	}()
	appLogger.Info("Starting vault daemon")

	runner, err := app.NewRunner(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize", zap.Error(err))
	}
	runner.Warm(ctx)

	if err := runner.Serve(ctx); err != nil {
		appLogger.Error("Daemon stopped with error", zap.Error(err))
	}

	if err := runner.Close(context.Background()); err != nil {
		appLogger.Error("Shutdown completed with errors", zap.Error(err))
		os.Exit(1)
	}
	appLogger.Info("Vault daemon stopped")
}
