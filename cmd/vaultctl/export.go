package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/export"
)

var (
	exportFlags  viewFlags
	exportFormat string
	exportDir    string
)

// exportCmd writes the filtered and sorted vault list to a file
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered and sorted vault list to CSV or JSON",
	Long: `Applies the same filters as list and writes the result to a timestamped
file in the export directory. The command fails when no vault matches.

Example:
  vaultctl export --format json --chain base --sort tvl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		sort, err := exportFlags.sortState()
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

		dir := exportDir
		if dir == "" {
			dir = runner.Config().ExportDir
		}
		path, err := runner.Exporter().ExportVaults(snap.Vaults, export.ExportOptions{
			Format:    format,
			Criteria:  exportFlags.criteria(cmd, runner.Config()),
			Sort:      sort,
			OutputDir: dir,
		})
		if err != nil {
			return err
		}

		appLogger.Info("Export written", zap.String("path", path))
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(export.FormatCSV), "output format: csv or json")
	exportCmd.Flags().StringVarP(&exportDir, "dir", "o", "", "output directory (defaults to export_dir)")
}
