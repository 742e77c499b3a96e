package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/icon"
	"github.com/rovshanmuradov/vault-browser/internal/metrics"
	"github.com/rovshanmuradov/vault-browser/internal/numeric"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// Refresher triggers an immediate re-fetch.
type Refresher interface {
	Refresh(ctx context.Context) (*vault.Snapshot, error)
}

type VaultHandler struct {
	catalog   *vault.Catalog
	refresher Refresher
	resolver  *icon.Resolver
	logger    *zap.Logger
}

// NewVaultHandler creates the vault endpoints. resolver may be nil, in which
// case responses carry no icon URIs.
func NewVaultHandler(catalog *vault.Catalog, refresher Refresher, resolver *icon.Resolver, logger *zap.Logger) *VaultHandler {
	return &VaultHandler{
		catalog:   catalog,
		refresher: refresher,
		resolver:  resolver,
		logger:    logger.Named("api"),
	}
}

// ListVaults serves the filtered and sorted view of the current snapshot.
func (h *VaultHandler) ListVaults(c *gin.Context) {
	criteria, sort, err := parseViewQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.catalog.Snapshot()
	visible := vault.View(snap.Vaults, criteria, sort)
	metrics.RecordView(len(visible))

	resp := ListResponse{
		Count:     len(visible),
		Sort:      sort.String(),
		FetchedAt: snap.FetchedAt,
		Vaults:    make([]VaultDTO, len(visible)),
	}
	// Probing here would cost one lookup per icon of every visible vault;
	// the list serves what the background warm-up has resolved so far.
	var icons iconLookup
	if h.resolver != nil {
		icons = cachedIcons(h.resolver)
	}
	for i, v := range visible {
		resp.Vaults[i] = newVaultDTO(v, icons)
	}
	c.JSON(http.StatusOK, resp)
}

// GetVault returns one vault by id.
func (h *VaultHandler) GetVault(c *gin.Context) {
	v, ok := h.catalog.Snapshot().Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "vault not found"})
		return
	}
	var icons iconLookup
	if h.resolver != nil {
		icons = resolveIcons(c.Request.Context(), h.resolver)
	}
	c.JSON(http.StatusOK, newVaultDTO(v, icons))
}

// ListChains returns the distinct chains of the current snapshot.
func (h *VaultHandler) ListChains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chains": h.catalog.Snapshot().Chains()})
}

// ListCategories returns the distinct categories of the current snapshot.
func (h *VaultHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Snapshot().Categories()})
}

// Refresh re-fetches the vault list now.
func (h *VaultHandler) Refresh(c *gin.Context) {
	if h.refresher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh is not configured"})
		return
	}

	snap, err := h.refresher.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Error("Manual refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":      len(snap.Vaults),
		"fetched_at": snap.FetchedAt,
	})
}

// parseViewQuery reads search, chain, category, min_tvl, eol, sort and dir.
func parseViewQuery(c *gin.Context) (vault.Criteria, vault.SortState, error) {
	criteria := vault.Criteria{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		MinimumTVL: numeric.Coerce(c.Query("min_tvl")),
	}

	for _, param := range c.QueryArray("chain") {
		for _, chain := range strings.Split(param, ",") {
			if chain = strings.TrimSpace(chain); chain != "" {
				criteria.Chains = append(criteria.Chains, chain)
			}
		}
	}

	if raw := c.Query("eol"); raw != "" {
		show, err := strconv.ParseBool(raw)
		if err != nil {
			return criteria, vault.Unsorted(), errors.New("eol must be a boolean")
		}
		criteria.ShowEOL = show
	}

	raw := c.Query("sort")
	if raw == "" {
		return criteria, vault.Unsorted(), nil
	}
	field, ok := vault.ParseField(raw)
	if !ok {
		return criteria, vault.Unsorted(), errors.New("sort must be one of apy, daily, tvl")
	}
	dir, ok := vault.ParseDirection(c.Query("dir"))
	if !ok {
		return criteria, vault.Unsorted(), errors.New("dir must be asc or desc")
	}
	return criteria, vault.SortedBy(field, dir), nil
}
