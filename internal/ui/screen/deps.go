package screen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/export"
	"github.com/rovshanmuradov/vault-browser/internal/icon"
	"github.com/rovshanmuradov/vault-browser/internal/logger"
	"github.com/rovshanmuradov/vault-browser/internal/ui"
	"github.com/rovshanmuradov/vault-browser/internal/ui/router"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// Fetcher re-fetches the catalog on demand.
type Fetcher interface {
	Refresh(ctx context.Context) (*vault.Snapshot, error)
}

// Exporter writes a filtered and sorted vault list to disk.
type Exporter interface {
	ExportVaults(vaults []vault.Vault, options export.ExportOptions) (string, error)
}

// Deps are the collaborators the screens share. Resolver, Exporter and Logs
// may be nil; the matching feature is then hidden.
type Deps struct {
	Catalog      *vault.Catalog
	Fetcher      Fetcher
	Resolver     *icon.Resolver
	Exporter     Exporter
	ExportDir    string
	ExportFormat export.ExportFormat
	Logs         *logger.LogBuffer
	Criteria     vault.Criteria // initial filter
	Timeout      time.Duration  // per fetch and per icon resolution
	Logger       *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Catalog == nil {
		d.Catalog = vault.NewCatalog()
	}
	return d
}

func (d Deps) timeout() time.Duration {
	if d.Timeout <= 0 {
		return 30 * time.Second
	}
	return d.Timeout
}

// NewFactory returns the router factory for navigation messages.
func NewFactory(deps Deps) router.Factory {
	deps = deps.withDefaults()
	return func(msg ui.RouterMsg) router.Screen {
		switch msg.To {
		case ui.RouteVaultDetail:
			v, ok := deps.Catalog.Snapshot().Find(msg.VaultID)
			if !ok {
				deps.Logger.Warn("Vault not found", zap.String("id", msg.VaultID))
				return nil
			}
			return NewVaultDetailScreen(v, deps)
		case ui.RouteVaultList:
			return NewVaultListScreen(deps)
		default:
			return nil
		}
	}
}
