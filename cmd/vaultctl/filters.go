package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/vault-browser/internal/app"
	"github.com/rovshanmuradov/vault-browser/internal/config"
	"github.com/rovshanmuradov/vault-browser/internal/numeric"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// viewFlags mirrors vault.Criteria and the sort state on the command line.
type viewFlags struct {
	search   string
	chains   []string
	category string
	minTVL   string
	showEOL  bool
	sortBy   string
	order    string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.search, "search", "s", "", "case-insensitive name substring")
	flags.StringSliceVar(&f.chains, "chain", nil, "chains to include (repeatable)")
	flags.StringVar(&f.category, "category", "", "category to include")
	flags.StringVar(&f.minTVL, "min-tvl", "", "minimum TVL, e.g. 1000000 or 1e6")
	flags.BoolVar(&f.showEOL, "eol", false, "include retired vaults")
	flags.StringVar(&f.sortBy, "sort", "", "sort field: apy, daily or tvl")
	flags.StringVar(&f.order, "order", "desc", "sort direction: asc or desc")
}

// criteria starts from the configured defaults and applies the flags that
// were set explicitly.
func (f *viewFlags) criteria(cmd *cobra.Command, cfg *config.Config) vault.Criteria {
	c := vault.Criteria{
		Search:     f.search,
		Chains:     cfg.Chains,
		Category:   f.category,
		MinimumTVL: cfg.MinimumTVL,
		ShowEOL:    cfg.ShowEOL,
	}
	flags := cmd.Flags()
	if flags.Changed("chain") {
		c.Chains = f.chains
	}
	if flags.Changed("min-tvl") {
		c.MinimumTVL = numeric.Coerce(f.minTVL)
	}
	if flags.Changed("eol") {
		c.ShowEOL = f.showEOL
	}
	return c
}

func (f *viewFlags) sortState() (vault.SortState, error) {
	if f.sortBy == "" {
		return vault.Unsorted(), nil
	}
	field, ok := vault.ParseField(f.sortBy)
	if !ok {
		return vault.Unsorted(), fmt.Errorf("unknown sort field %q", f.sortBy)
	}
	dir, ok := vault.ParseDirection(f.order)
	if !ok {
		return vault.Unsorted(), fmt.Errorf("unknown sort order %q", f.order)
	}
	return vault.SortedBy(field, dir), nil
}

// load fills the runner's catalog, either from upstream or, with --offline,
// from the stored snapshot.
func load(ctx context.Context, runner *app.Runner) (*vault.Snapshot, error) {
	if offline {
		if !runner.Warm(ctx) {
			return nil, errors.New("no stored snapshot, run without --offline first")
		}
		return runner.Catalog().Snapshot(), nil
	}
	return runner.Refresher().Refresh(ctx)
}
