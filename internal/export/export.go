package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ParseFormat accepts "csv" or "json" in any case.
func ParseFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format    ExportFormat
	Criteria  vault.Criteria
	Sort      vault.SortState
	OutputDir string
}

// VaultExporter writes the visible vault list to disk.
type VaultExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewVaultExporter creates a new vault exporter
func NewVaultExporter(logger *zap.Logger) *VaultExporter {
	return &VaultExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// ExportVaults filters and sorts vaults the way a view would and writes the
// result. It returns the path of the written file.
func (ve *VaultExporter) ExportVaults(vaults []vault.Vault, options ExportOptions) (string, error) {
	visible := vault.View(vaults, options.Criteria, options.Sort)
	if len(visible) == 0 {
		return "", fmt.Errorf("no vaults match the export criteria")
	}

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, ve.generateFilename(options))

	var err error
	switch options.Format {
	case FormatCSV:
		err = ve.exportToCSV(visible, outputPath)
	case FormatJSON:
		err = ve.exportToJSON(visible, options, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	ve.logger.Info("Export completed",
		zap.String("path", outputPath),
		zap.Int("count", len(visible)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// generateFilename creates a filename based on export options
func (ve *VaultExporter) generateFilename(options ExportOptions) string {
	timestamp := ve.now().Format("20060102_150405")

	prefix := "vaults"
	if options.Sort.IsSorted() {
		prefix += "_by_" + options.Sort.Field().Key() + "_" + options.Sort.Direction().String()
	}
	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

// CSVHeaders lists the exported columns.
func CSVHeaders() []string {
	return []string{
		"id", "name", "chain", "assets", "category", "tags",
		"apy", "apy_raw", "daily", "daily_raw", "tvl", "tvl_raw",
	}
}

func csvRecord(v vault.Vault) []string {
	return []string{
		v.ID,
		v.Name,
		v.Chain,
		strings.Join(v.Assets, "+"),
		v.Category,
		strings.Join(v.Tags, "|"),
		vault.FormatAPY(v.APY), v.APY.String(),
		vault.FormatDaily(v.Daily), v.Daily.String(),
		vault.FormatTVL(v.TVL), v.TVL.String(),
	}
}

func (ve *VaultExporter) exportToCSV(vaults []vault.Vault, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, v := range vaults {
		if err := writer.Write(csvRecord(v)); err != nil {
			return fmt.Errorf("failed to write vault %s: %w", v.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func (ve *VaultExporter) exportToJSON(vaults []vault.Vault, options ExportOptions, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time     `json:"export_time"`
		Sort       string        `json:"sort"`
		VaultCount int           `json:"vault_count"`
		Summary    ExportSummary `json:"summary"`
		Vaults     []vault.Vault `json:"vaults"`
	}{
		ExportTime: ve.now(),
		Sort:       options.Sort.String(),
		VaultCount: len(vaults),
		Summary:    CalculateSummary(vaults),
		Vaults:     vaults,
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportSummary contains summary statistics for exported vaults
type ExportSummary struct {
	TotalVaults int             `json:"total_vaults"`
	EOLCount    int             `json:"eol_count"`
	Chains      int             `json:"chains"`
	TotalTVL    decimal.Decimal `json:"total_tvl"`
	AverageAPY  decimal.Decimal `json:"average_apy"`
	MaxAPY      decimal.Decimal `json:"max_apy"`
}

// CalculateSummary totals coerced metrics. Non-finite values are skipped.
func CalculateSummary(vaults []vault.Vault) ExportSummary {
	summary := ExportSummary{TotalVaults: len(vaults)}

	chains := make(map[string]bool)
	apySum := decimal.Zero
	apyCount := 0
	for _, v := range vaults {
		chains[v.Chain] = true
		if v.IsEOL() {
			summary.EOLCount++
		}
		if tvl, ok := finite(v.TVL.Float()); ok {
			summary.TotalTVL = summary.TotalTVL.Add(tvl)
		}
		if apy, ok := finite(v.APY.Float()); ok {
			apySum = apySum.Add(apy)
			apyCount++
			if apyCount == 1 || apy.GreaterThan(summary.MaxAPY) {
				summary.MaxAPY = apy
			}
		}
	}
	summary.Chains = len(chains)

	if apyCount > 0 {
		summary.AverageAPY = apySum.Div(decimal.NewFromInt(int64(apyCount))).Round(4)
	}
	return summary
}

func finite(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
