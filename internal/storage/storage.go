// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// ErrNoSnapshot is returned by Latest before the first Save.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Storage keeps the last fetched vault list so views can start offline.
type Storage interface {
	// Save replaces the stored snapshot with vaults, keeping their order.
	Save(ctx context.Context, vaults []vault.Vault, fetchedAt time.Time) error
	// Latest returns the stored vaults in saved order.
	Latest(ctx context.Context) ([]vault.Vault, time.Time, error)

	RunMigrations() error
	Close() error
}
