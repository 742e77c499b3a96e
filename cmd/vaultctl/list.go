package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

var (
	listFlags viewFlags
	listJSON  bool
)

// listCmd prints the filtered and sorted vault list
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the filtered and sorted vault list",
	Long: `Fetches the vault list and prints the vaults that pass every filter.

Example:
  vaultctl list --chain ethereum --chain base --min-tvl 1e6 --sort apy`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sort, err := listFlags.sortState()
		if err != nil {
			return err
		}

		runner, err := newRunner()
		if err != nil {
			return err
		}
		defer func() { _ = runner.Close(cmd.Context()) }()

		snap, err := load(cmd.Context(), runner)
		if err != nil {
			return err
		}

		visible := vault.View(snap.Vaults, listFlags.criteria(cmd, runner.Config()), sort)
		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(visible)
		}
		return printTable(cmd.OutOrStdout(), visible, sort)
	},
}

// chainsCmd lists the chains and categories present in the snapshot
var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the chains and categories in the current vault list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newRunner()
		if err != nil {
			return err
		}
		defer func() { _ = runner.Close(cmd.Context()) }()

		snap, err := load(cmd.Context(), runner)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "chains:     %s\n", strings.Join(snap.Chains(), ", "))
		fmt.Fprintf(out, "categories: %s\n", strings.Join(snap.Categories(), ", "))
		return nil
	},
}

func init() {
	listFlags.register(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
}

// printTable writes one aligned row per vault. The active sort column is
// marked with an arrow.
func printTable(w io.Writer, vaults []vault.Vault, sort vault.SortState) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := []string{"NAME", "CHAIN"}
	for _, f := range vault.Fields {
		headers = append(headers, columnHeader(f, sort))
	}
	headers = append(headers, "ASSETS")
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, v := range vaults {
		name := v.Name
		if v.IsEOL() {
			name += " (eol)"
		}
		cells := []string{name, v.Chain}
		for _, f := range vault.Fields {
			cells = append(cells, cellValue(f, v))
		}
		cells = append(cells, strings.Join(v.Assets, "-"))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d vaults\n", len(vaults))
	return err
}

func columnHeader(f vault.Field, sort vault.SortState) string {
	switch {
	case sort.Is(f, vault.Descending):
		return f.String() + " ▼"
	case sort.Is(f, vault.Ascending):
		return f.String() + " ▲"
	default:
		return f.String()
	}
}

func cellValue(f vault.Field, v vault.Vault) string {
	return vault.Display(f, f.Of(v))
}
