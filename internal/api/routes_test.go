package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/api/handlers"
	"github.com/rovshanmuradov/vault-browser/internal/icon"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testCatalog() *vault.Catalog {
	c := vault.NewCatalog()
	c.Replace([]vault.Vault{
		{ID: "a", Name: "USDC-ETH LP", Chain: "arbitrum", Assets: []string{"USDC", "ETH"},
			APY: vault.Text("12.5%"), Daily: vault.Number(0.034), TVL: vault.Text("$1,500,000"), Category: "lp"},
		{ID: "b", Name: "Curve tricrypto", Chain: "ethereum", Assets: []string{"USDT", "WBTC", "ETH"},
			APY: vault.Number(4.2), Daily: vault.Number(0.0115), TVL: vault.Number(250_000), Category: "lp"},
		{ID: "c", Name: "Old CAKE", Chain: "bsc", Assets: []string{"CAKE"},
			APY: vault.Number(80), Daily: vault.Number(0.2191), TVL: vault.Text("$900"), Tags: []string{vault.TagEOL}, Category: "single"},
	}, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	return c
}

type stubRefresher struct {
	catalog *vault.Catalog
	err     error
}

func (s stubRefresher) Refresh(context.Context) (*vault.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.catalog.Snapshot(), nil
}

func newTestRouter(t *testing.T, refresher handlers.Refresher, resolver *icon.Resolver) (*gin.Engine, *vault.Catalog) {
	t.Helper()
	catalog := testCatalog()
	if r, ok := refresher.(stubRefresher); ok {
		r.catalog = catalog
		refresher = r
	}
	return SetupRouter(Options{
		Catalog:   catalog,
		Refresher: refresher,
		Resolver:  resolver,
		Logger:    zap.NewNop(),
	}), catalog
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) handlers.ListResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp handlers.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func listIDs(resp handlers.ListResponse) []string {
	out := make([]string, len(resp.Vaults))
	for i, v := range resp.Vaults {
		out[i] = v.ID
	}
	return out
}

func TestListVaultsDefaults(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	resp := decodeList(t, get(t, router, "/api/vaults"))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "unsorted", resp.Sort)
	assert.Equal(t, []string{"a", "b"}, listIDs(resp))

	a := resp.Vaults[0]
	assert.Equal(t, "12.50", a.APY.Formatted)
	assert.Equal(t, "12.50%", a.APY.Display)
	assert.Equal(t, "12.5%", a.APY.Raw.RawValue())
	assert.Equal(t, "1.50M", a.TVL.Formatted)
	assert.Equal(t, "$1.50M", a.TVL.Display)
	assert.Equal(t, "0.0340%", a.Daily.Display)
	require.NotNil(t, a.TVL.Value)
	assert.Equal(t, 1_500_000.0, *a.TVL.Value)
	assert.Empty(t, a.AssetIcons)
}

func TestListVaultsQuery(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	tests := []struct {
		query string
		want  []string
	}{
		{"?eol=true", []string{"a", "b", "c"}},
		{"?eol=true&sort=tvl", []string{"a", "b", "c"}},
		{"?eol=true&sort=tvl&dir=asc", []string{"c", "b", "a"}},
		{"?eol=true&sort=apy&dir=desc", []string{"c", "a", "b"}},
		{"?search=CURVE", []string{"b"}},
		{"?chain=arbitrum,bsc&eol=1", []string{"a", "c"}},
		{"?chain=arbitrum&chain=ethereum", []string{"a", "b"}},
		{"?category=single&eol=true", []string{"c"}},
		{"?min_tvl=$300,000", []string{"a"}},
		{"?min_tvl=garbage", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := decodeList(t, get(t, router, "/api/vaults"+tt.query))
			assert.Equal(t, tt.want, listIDs(resp))
		})
	}
}

func TestListVaultsBadQuery(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	for _, q := range []string{"?sort=volume", "?sort=tvl&dir=up", "?eol=maybe"} {
		w := get(t, router, "/api/vaults"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestListVaultsWithIcons(t *testing.T) {
	probe := icon.ProbeFunc(func(_ context.Context, uri string) bool {
		return uri == "/images/single-assets/ETH.svg" || uri == "/images/networks/arbitrum.svg"
	})
	resolver, err := icon.NewResolver(probe, 32, zap.NewNop())
	require.NoError(t, err)

	router, _ := newTestRouter(t, nil, resolver)
	w := get(t, router, "/api/vaults/a")
	require.Equal(t, http.StatusOK, w.Code)

	var dto handlers.VaultDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Equal(t, "/images/networks/arbitrum.svg", dto.NetworkIcon)
	require.Len(t, dto.AssetIcons, 2)
	assert.Equal(t, icon.DefaultAssetIcon, dto.AssetIcons[0].URI, "USDC falls through to the placeholder")
	assert.Equal(t, "/images/single-assets/ETH.svg", dto.AssetIcons[1].URI)
	assert.Equal(t, icon.Layout(2, 0), dto.AssetIcons[0].Placement)
}

func TestListVaultsServesCachedIconsWithoutProbing(t *testing.T) {
	var calls atomic.Int32
	slow := icon.ProbeFunc(func(_ context.Context, uri string) bool {
		calls.Add(1)
		time.Sleep(100 * time.Millisecond)
		return uri == "/images/single-assets/ETH.svg"
	})
	resolver, err := icon.NewResolver(slow, 64, zap.NewNop())
	require.NoError(t, err)
	router, _ := newTestRouter(t, nil, resolver)

	start := time.Now()
	resp := decodeList(t, get(t, router, "/api/vaults?eol=true"))
	assert.Less(t, time.Since(start), 500*time.Millisecond, "listing must not wait on icon lookups")
	assert.Zero(t, calls.Load())

	require.Len(t, resp.Vaults, 3)
	first := resp.Vaults[0]
	assert.Equal(t, "/images/networks/arbitrum.svg", first.NetworkIcon)
	require.Len(t, first.AssetIcons, 2)
	assert.Equal(t, icon.Candidates("arbitrum", "USDC")[0], first.AssetIcons[0].URI)

	// Once resolved elsewhere, the list serves the resolved URIs.
	resolver.ResolveAssets(context.Background(), "arbitrum", []string{"USDC", "ETH"})
	calls.Store(0)

	first = decodeList(t, get(t, router, "/api/vaults?eol=true")).Vaults[0]
	assert.Equal(t, icon.DefaultAssetIcon, first.AssetIcons[0].URI)
	assert.Equal(t, "/images/single-assets/ETH.svg", first.AssetIcons[1].URI)
	assert.Zero(t, calls.Load())
}

func TestListVaultsDisplayLeavesNotAvailableBare(t *testing.T) {
	catalog := vault.NewCatalog()
	catalog.Replace([]vault.Vault{{ID: "nan", Name: "Broken", APY: vault.Number(math.NaN())}}, time.Now())
	router := SetupRouter(Options{Catalog: catalog, Logger: zap.NewNop()})

	resp := decodeList(t, get(t, router, "/api/vaults"))
	require.Len(t, resp.Vaults, 1)
	assert.Equal(t, "N/A", resp.Vaults[0].APY.Display)
	assert.Nil(t, resp.Vaults[0].APY.Value)
	assert.Equal(t, "$0", resp.Vaults[0].TVL.Display)
}

func TestGetVaultNotFound(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/vaults/missing").Code)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/nowhere").Code)
}

func TestChainsAndCategories(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	var chains struct{ Chains []string }
	require.NoError(t, json.Unmarshal(get(t, router, "/api/chains").Body.Bytes(), &chains))
	assert.Equal(t, []string{"arbitrum", "bsc", "ethereum"}, chains.Chains)

	var categories struct{ Categories []string }
	require.NoError(t, json.Unmarshal(get(t, router, "/api/categories").Body.Bytes(), &categories))
	assert.Equal(t, []string{"lp", "single"}, categories.Categories)
}

func TestRefresh(t *testing.T) {
	router, _ := newTestRouter(t, stubRefresher{}, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":3`)

	router, _ = newTestRouter(t, stubRefresher{err: errors.New("upstream down")}, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	router, _ = newTestRouter(t, nil, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"vaults":3`)

	_ = get(t, router, "/api/vaults")
	w = get(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vaults_http_requests_total")
}
