package icon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rovshanmuradov/vault-browser/internal/metrics"
)

// Probe tells whether an icon URI loads. It plays the role of the image
// element's load/error events for views that cannot render images.
type Probe interface {
	Exists(ctx context.Context, uri string) bool
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context, uri string) bool

// Exists implements Probe.
func (f ProbeFunc) Exists(ctx context.Context, uri string) bool {
	return f(ctx, uri)
}

// FileProbe looks icons up in a static directory laid out like the URIs.
type FileProbe struct {
	Root string
}

// Exists implements Probe.
func (p FileProbe) Exists(_ context.Context, uri string) bool {
	if uri == "" {
		return false
	}
	path := filepath.Join(p.Root, filepath.FromSlash(strings.TrimPrefix(uri, "/")))
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// HTTPProbe issues HEAD requests against a static asset host.
type HTTPProbe struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPProbe creates a probe that allows at most perSecond requests.
func NewHTTPProbe(baseURL string, perSecond float64, timeout time.Duration) *HTTPProbe {
	return &HTTPProbe{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Exists implements Probe.
func (p *HTTPProbe) Exists(ctx context.Context, uri string) bool {
	if uri == "" {
		return false
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.baseURL+uri, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// AssetIcon is one resolved icon of a vault's asset stack.
type AssetIcon struct {
	Symbol    string    `json:"symbol"`
	URI       string    `json:"uri"`
	Placement Placement `json:"placement"`
}

// Resolver runs the fallback protocol against a Probe and remembers the
// outcome per icon identity.
type Resolver struct {
	probe  Probe
	cache  *lru.Cache[string, string]
	logger *zap.Logger
}

// NewResolver creates a resolver with an LRU of cacheSize entries.
func NewResolver(probe Probe, cacheSize int, logger *zap.Logger) (*Resolver, error) {
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}
	return &Resolver{
		probe:  probe,
		cache:  cache,
		logger: logger.Named("icons"),
	}, nil
}

// ResolveAsset returns the first loadable candidate for an asset, or the last
// candidate when none loads.
func (r *Resolver) ResolveAsset(ctx context.Context, chain, symbol string) string {
	key := assetKey(chain, symbol)
	if uri, ok := r.cache.Get(key); ok {
		return uri
	}

	c := NewChain(Candidates(chain, symbol))
	for !r.probe.Exists(ctx, c.Source()) {
		failed := c.Source()
		if _, ok := c.Advance(); !ok {
			metrics.IconExhaustedTotal.WithLabelValues("asset").Inc()
			r.logger.Debug("Asset icon fallbacks exhausted",
				zap.String("chain", chain),
				zap.String("symbol", symbol),
				zap.String("uri", failed))
			break
		}
		metrics.IconFallbacksTotal.WithLabelValues("asset").Inc()
	}

	if ctx.Err() == nil {
		r.cache.Add(key, c.Source())
	}
	return c.Source()
}

// ResolveNetwork returns the chain logo, or the placeholder if it fails.
func (r *Resolver) ResolveNetwork(ctx context.Context, chain string) string {
	key := networkKey(chain)
	if uri, ok := r.cache.Get(key); ok {
		return uri
	}

	n := NewNetworkIcon(chain)
	if !r.probe.Exists(ctx, n.Source()) && n.Fail() {
		metrics.IconFallbacksTotal.WithLabelValues("network").Inc()
		r.logger.Debug("Network icon replaced by placeholder", zap.String("chain", chain))
	}

	if ctx.Err() == nil {
		r.cache.Add(key, n.Source())
	}
	return n.Source()
}

// ResolveAssets resolves the stacked icons of a vault: at most MaxStacked,
// in asset order.
func (r *Resolver) ResolveAssets(ctx context.Context, chain string, assets []string) []AssetIcon {
	n := min(len(assets), MaxStacked)
	icons := make([]AssetIcon, 0, n)
	for i := 0; i < n; i++ {
		icons = append(icons, AssetIcon{
			Symbol:    assets[i],
			URI:       r.ResolveAsset(ctx, chain, assets[i]),
			Placement: Layout(len(assets), i),
		})
	}
	return icons
}

// CachedNetwork returns the resolved chain logo without probing. Before the
// chain has been resolved it returns the chain's own logo.
func (r *Resolver) CachedNetwork(chain string) string {
	if uri, ok := r.cache.Get(networkKey(chain)); ok {
		return uri
	}
	return NetworkURI(chain)
}

// CachedAssets is ResolveAssets without probing: unresolved assets get their
// first candidate.
func (r *Resolver) CachedAssets(chain string, assets []string) []AssetIcon {
	n := min(len(assets), MaxStacked)
	icons := make([]AssetIcon, 0, n)
	for i := 0; i < n; i++ {
		uri, ok := r.cache.Get(assetKey(chain, assets[i]))
		if !ok {
			uri = Candidates(chain, assets[i])[0]
		}
		icons = append(icons, AssetIcon{
			Symbol:    assets[i],
			URI:       uri,
			Placement: Layout(len(assets), i),
		})
	}
	return icons
}

func assetKey(chain, symbol string) string {
	return "asset:" + strings.ToLower(strings.TrimSpace(chain)) + "/" + strings.ToUpper(strings.TrimSpace(symbol))
}

func networkKey(chain string) string {
	return "network:" + chain
}

// Purge drops every cached resolution, e.g. after the icon set changed.
func (r *Resolver) Purge() {
	r.cache.Purge()
}
