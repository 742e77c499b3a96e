// Package app wires configuration, storage, the upstream client and the
// vault catalog together for the command line entrypoints.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/vault-browser/internal/api"
	"github.com/rovshanmuradov/vault-browser/internal/beefy"
	"github.com/rovshanmuradov/vault-browser/internal/config"
	"github.com/rovshanmuradov/vault-browser/internal/export"
	"github.com/rovshanmuradov/vault-browser/internal/icon"
	"github.com/rovshanmuradov/vault-browser/internal/refresh"
	"github.com/rovshanmuradov/vault-browser/internal/storage"
	"github.com/rovshanmuradov/vault-browser/internal/storage/sqlite"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

const serverShutdownTimeout = 10 * time.Second

type Runner struct {
	logger    *zap.Logger
	config    *config.Config
	store     storage.Storage
	catalog   *vault.Catalog
	refresher *refresh.Refresher
	resolver  *icon.Resolver
	exporter  *export.VaultExporter
	shutdown  *ShutdownHandler
}

// NewRunner opens the snapshot store and builds every collaborator from cfg.
// Call Close to release the store.
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	store, err := sqlite.NewStorage(cfg.SnapshotPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	shutdown := NewShutdownHandler(logger.Named("shutdown"), 0)
	shutdown.Add("storage", store)

	client := beefy.NewClient(beefy.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.RequestTimeout,
		Retries:   cfg.Retries,
		RateLimit: cfg.RateLimit,
		Chains:    cfg.Chains,
	}, logger)
	source := beefy.NewCachedSource(client, store, logger)
	catalog := vault.NewCatalog()

	var probe icon.Probe
	if cfg.IconRoot != "" {
		probe = icon.FileProbe{Root: cfg.IconRoot}
	} else {
		probe = icon.NewHTTPProbe(cfg.IconBaseURL, cfg.RateLimit, cfg.RequestTimeout)
	}
	resolver, err := icon.NewResolver(probe, cfg.IconCacheSize, logger)
	if err != nil {
		_ = shutdown.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create icon resolver: %w", err)
	}

	return &Runner{
		logger:    logger,
		config:    cfg,
		store:     store,
		catalog:   catalog,
		refresher: refresh.New(source, catalog, cfg.RefreshInterval, logger),
		resolver:  resolver,
		exporter:  export.NewVaultExporter(logger),
		shutdown:  shutdown,
	}, nil
}

func (r *Runner) Config() *config.Config { return r.config }
func (r *Runner) Catalog() *vault.Catalog { return r.catalog }
func (r *Runner) Refresher() *refresh.Refresher { return r.refresher }
func (r *Runner) Resolver() *icon.Resolver { return r.resolver }
func (r *Runner) Exporter() *export.VaultExporter { return r.exporter }

// Warm publishes the stored snapshot so views have data before the first
// fetch completes. It reports whether a snapshot was loaded.
func (r *Runner) Warm(ctx context.Context) bool {
	vaults, fetchedAt, err := r.store.Latest(ctx)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		return false
	case err != nil:
		r.logger.Warn("Failed to load stored snapshot", zap.Error(err))
		return false
	}

	r.catalog.Replace(vaults, fetchedAt)
	r.logger.Info("Loaded stored snapshot",
		zap.Int("count", len(vaults)),
		zap.Time("fetched_at", fetchedAt))
	return true
}

// Serve runs the refresher and the HTTP API until ctx is done or the server
// fails.
func (r *Runner) Serve(ctx context.Context) error {
	if !r.config.DebugLogging {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr: r.config.ListenAddr,
		Handler: api.SetupRouter(api.Options{
			Catalog:     r.catalog,
			Refresher:   r.refresher,
			Resolver:    r.resolver,
			CORSOrigins: r.config.CORSOrigins,
			Logger:      r.logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Icons are resolved in the background after every new snapshot; the list
	// endpoint only reads what has been resolved.
	warmer := icon.NewWarmer(r.resolver, r.logger)
	defer warmer.Close()
	r.refresher.OnPublish(func(snap *vault.Snapshot) {
		warmer.Warm(iconTargets(snap))
	})
	if snap := r.catalog.Snapshot(); len(snap.Vaults) > 0 {
		warmer.Warm(iconTargets(snap))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.refresher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		r.logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func iconTargets(snap *vault.Snapshot) []icon.Target {
	targets := make([]icon.Target, len(snap.Vaults))
	for i, v := range snap.Vaults {
		targets[i] = icon.Target{Chain: v.Chain, Assets: v.Assets}
	}
	return targets
}

// Close releases everything NewRunner opened.
func (r *Runner) Close(ctx context.Context) error {
	r.resolver.Purge()
	return r.shutdown.Shutdown(ctx)
}
