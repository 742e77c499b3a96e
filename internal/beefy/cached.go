package beefy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/metrics"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// SnapshotStore persists the last successful fetch.
type SnapshotStore interface {
	Save(ctx context.Context, vaults []vault.Vault, fetchedAt time.Time) error
	Latest(ctx context.Context) ([]vault.Vault, time.Time, error)
}

// CachedSource saves every successful fetch and serves the saved snapshot
// when the upstream source fails.
type CachedSource struct {
	source Source
	store  SnapshotStore
	logger *zap.Logger
	now    func() time.Time
}

// NewCachedSource wraps source with store.
func NewCachedSource(source Source, store SnapshotStore, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		store:  store,
		logger: logger.Named("cache"),
		now:    time.Now,
	}
}

// FetchVaults implements Source.
func (c *CachedSource) FetchVaults(ctx context.Context) ([]vault.Vault, error) {
	vaults, err := c.source.FetchVaults(ctx)
	if err == nil {
		if serr := c.store.Save(ctx, vaults, c.now()); serr != nil {
			c.logger.Warn("Failed to save snapshot", zap.Error(serr))
		} else {
			c.logger.Info("Snapshot saved", zap.Int("count", len(vaults)))
		}
		return vaults, nil
	}

	if ctx.Err() != nil {
		return nil, err
	}

	cached, fetchedAt, lerr := c.store.Latest(ctx)
	if lerr != nil {
		return nil, errors.Join(err, fmt.Errorf("no cached snapshot: %w", lerr))
	}
	metrics.FetchTotal.WithLabelValues("cached").Inc()
	c.logger.Warn("Using cached snapshot",
		zap.Time("fetched_at", fetchedAt),
		zap.Int("count", len(cached)),
		zap.Error(err))
	return cached, nil
}
