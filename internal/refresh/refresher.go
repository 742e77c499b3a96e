// Package refresh keeps a vault catalog current by polling a source.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/beefy"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// restartDelay is how long Run waits after a panic before polling again.
const restartDelay = 30 * time.Second

// Refresher fetches from a source into a catalog on demand and on a ticker.
type Refresher struct {
	source    beefy.Source
	catalog   *vault.Catalog
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
	notify    func(*vault.Snapshot, error)
	onPublish []func(*vault.Snapshot)

	// mu serialises fetches so a manual refresh never races the ticker.
	mu sync.Mutex
}

// New creates a refresher. interval must be positive for Run.
func New(source beefy.Source, catalog *vault.Catalog, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		source:   source,
		catalog:  catalog,
		interval: interval,
		logger:   logger.Named("refresh"),
		now:      time.Now,
	}
}

// OnScheduled registers fn to receive the outcome of every scheduled refresh
// made by Run. It must be called before Run.
func (r *Refresher) OnScheduled(fn func(*vault.Snapshot, error)) {
	r.notify = fn
}

// OnPublish registers fn to run after every snapshot Refresh installs,
// manual or scheduled. fn runs with the refresh lock held and must return
// promptly.
func (r *Refresher) OnPublish(fn func(*vault.Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPublish = append(r.onPublish, fn)
}

// Refresh fetches once and publishes the result. On error the catalog keeps
// its previous snapshot.
func (r *Refresher) Refresh(ctx context.Context) (*vault.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vaults, err := r.source.FetchVaults(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh failed: %w", err)
	}
	snap := r.catalog.Replace(vaults, r.now())
	for _, fn := range r.onPublish {
		fn(snap)
	}
	return snap, nil
}

// Run refreshes immediately and then every interval until ctx is done. A
// panic inside a refresh is logged and polling resumes after a delay.
func (r *Refresher) Run(ctx context.Context) {
	for {
		r.poll(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
			r.logger.Warn("Refresher restarting after panic recovery")
		}
	}
}

func (r *Refresher) poll(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Panic in refresher", zap.Any("panic", rec), zap.Stack("stack"))
		}
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		snap, err := r.Refresh(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			r.logger.Error("Scheduled refresh failed", zap.Error(err))
		}
		if r.notify != nil {
			r.notify(snap, err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
