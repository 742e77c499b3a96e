package vault

import (
	"slices"
	"sync/atomic"
	"time"
)

// Snapshot is one immutable vault collection as returned by a fetch.
type Snapshot struct {
	Vaults    []Vault
	FetchedAt time.Time
}

// Find returns the vault with the given id.
func (s *Snapshot) Find(id string) (Vault, bool) {
	for _, v := range s.Vaults {
		if v.ID == id {
			return v, true
		}
	}
	return Vault{}, false
}

// Chains returns the distinct chains in the snapshot, sorted.
func (s *Snapshot) Chains() []string {
	return distinct(s.Vaults, func(v Vault) string { return v.Chain })
}

// Categories returns the distinct non-empty categories, sorted.
func (s *Snapshot) Categories() []string {
	return distinct(s.Vaults, func(v Vault) string { return v.Category })
}

func distinct(vaults []Vault, key func(Vault) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, v := range vaults {
		k := key(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Catalog holds the current snapshot. Readers always see a complete snapshot;
// a refresh swaps the whole collection at once.
type Catalog struct {
	current atomic.Pointer[Snapshot]
}

// NewCatalog returns a catalog holding an empty snapshot.
func NewCatalog() *Catalog {
	c := &Catalog{}
	c.current.Store(&Snapshot{})
	return c
}

// Replace installs a copy of vaults as the current snapshot.
func (c *Catalog) Replace(vaults []Vault, fetchedAt time.Time) *Snapshot {
	snap := &Snapshot{
		Vaults:    slices.Clone(vaults),
		FetchedAt: fetchedAt,
	}
	c.current.Store(snap)
	return snap
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}
