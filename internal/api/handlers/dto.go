package handlers

import (
	"context"
	"math"
	"time"

	"github.com/rovshanmuradov/vault-browser/internal/icon"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// MetricDTO carries one metric in every form a client may want to show.
type MetricDTO struct {
	Raw       vault.Value `json:"raw"`
	Value     *float64    `json:"value"` // nil when the coerced value is NaN or infinite
	Formatted string      `json:"formatted"`
	Display   string      `json:"display"`
}

// VaultDTO is a vault as served by the API.
type VaultDTO struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Chain       string           `json:"chain"`
	Assets      []string         `json:"assets"`
	Tags        []string         `json:"tags"`
	Category    string           `json:"category"`
	EOL         bool             `json:"eol"`
	APY         MetricDTO        `json:"apy"`
	Daily       MetricDTO        `json:"daily"`
	TVL         MetricDTO        `json:"tvl"`
	NetworkIcon string           `json:"network_icon,omitempty"`
	AssetIcons  []icon.AssetIcon `json:"asset_icons,omitempty"`
}

// ListResponse is the body of GET /api/vaults.
type ListResponse struct {
	Count     int        `json:"count"`
	Sort      string     `json:"sort"`
	FetchedAt time.Time  `json:"fetched_at"`
	Vaults    []VaultDTO `json:"vaults"`
}

func newMetricDTO(f vault.Field, v vault.Value) MetricDTO {
	m := MetricDTO{
		Raw:       v,
		Formatted: vault.Format(f, v),
	}
	m.Display = vault.Display(f, v)
	if x := v.Float(); !math.IsNaN(x) && !math.IsInf(x, 0) {
		m.Value = &x
	}
	return m
}

// iconLookup fills the icon fields of a DTO.
type iconLookup func(v vault.Vault, dto *VaultDTO)

// resolveIcons probes for every icon of v. Only suitable for single vaults.
func resolveIcons(ctx context.Context, resolver *icon.Resolver) iconLookup {
	return func(v vault.Vault, dto *VaultDTO) {
		dto.NetworkIcon = resolver.ResolveNetwork(ctx, v.Chain)
		dto.AssetIcons = resolver.ResolveAssets(ctx, v.Chain, v.Assets)
	}
}

// cachedIcons reads resolved icons without probing.
func cachedIcons(resolver *icon.Resolver) iconLookup {
	return func(v vault.Vault, dto *VaultDTO) {
		dto.NetworkIcon = resolver.CachedNetwork(v.Chain)
		dto.AssetIcons = resolver.CachedAssets(v.Chain, v.Assets)
	}
}

func newVaultDTO(v vault.Vault, icons iconLookup) VaultDTO {
	dto := VaultDTO{
		ID:       v.ID,
		Name:     v.Name,
		Chain:    v.Chain,
		Assets:   v.Assets,
		Tags:     v.Tags,
		Category: v.Category,
		EOL:      v.IsEOL(),
		APY:      newMetricDTO(vault.FieldAPY, v.APY),
		Daily:    newMetricDTO(vault.FieldDaily, v.Daily),
		TVL:      newMetricDTO(vault.FieldTVL, v.TVL),
	}
	if dto.Assets == nil {
		dto.Assets = []string{}
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if icons != nil {
		icons(v, &dto)
	}
	return dto
}
