package icon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingProbe succeeds only for the listed URIs and records every call.
type recordingProbe struct {
	mu    sync.Mutex
	ok    map[string]bool
	calls []string
}

func newRecordingProbe(ok ...string) *recordingProbe {
	p := &recordingProbe{ok: make(map[string]bool)}
	for _, uri := range ok {
		p.ok[uri] = true
	}
	return p
}

func (p *recordingProbe) Exists(_ context.Context, uri string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, uri)
	return p.ok[uri]
}

func TestResolveAssetWalksCandidates(t *testing.T) {
	probe := newRecordingProbe("/images/single-assets/ETH.svg")
	r, err := NewResolver(probe, 16, zap.NewNop())
	require.NoError(t, err)

	uri := r.ResolveAsset(context.Background(), "base", "eth")
	assert.Equal(t, "/images/single-assets/ETH.svg", uri)
	assert.Equal(t, Candidates("base", "eth")[:3], probe.calls)

	// Cached: no further probing.
	assert.Equal(t, uri, r.ResolveAsset(context.Background(), "BASE", "ETH"))
	assert.Len(t, probe.calls, 3)
}

func TestResolveAssetKeepsLastCandidateWhenNothingLoads(t *testing.T) {
	probe := newRecordingProbe()
	r, err := NewResolver(probe, 16, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, DefaultAssetIcon, r.ResolveAsset(context.Background(), "bsc", "CAKE"))
	assert.Equal(t, Candidates("bsc", "CAKE"), probe.calls, "each candidate is tried exactly once")
}

func TestResolveNetworkFallsBackOnce(t *testing.T) {
	probe := newRecordingProbe()
	r, err := NewResolver(probe, 16, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, DefaultNetworkIcon, r.ResolveNetwork(context.Background(), "fantom"))
	assert.Equal(t, []string{"/images/networks/fantom.svg"}, probe.calls)

	ok := newRecordingProbe("/images/networks/base.svg")
	r2, err := NewResolver(ok, 16, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "/images/networks/base.svg", r2.ResolveNetwork(context.Background(), "base"))
}

func TestResolveAssetsStacksFirstFour(t *testing.T) {
	r, err := NewResolver(ProbeFunc(func(context.Context, string) bool { return true }), 16, zap.NewNop())
	require.NoError(t, err)

	icons := r.ResolveAssets(context.Background(), "ethereum", []string{"A", "B", "C", "D", "E"})
	require.Len(t, icons, MaxStacked)
	for i, ic := range icons {
		assert.Equal(t, string(rune('A'+i)), ic.Symbol)
		assert.Equal(t, Candidates("ethereum", ic.Symbol)[0], ic.URI)
		assert.Equal(t, Layout(5, i), ic.Placement)
	}
}

func TestResolverCancelledContextIsNotCached(t *testing.T) {
	probe := newRecordingProbe("/images/assets/base/ETH.svg")
	r, err := NewResolver(ProbeFunc(func(ctx context.Context, uri string) bool {
		if ctx.Err() != nil {
			return false
		}
		return probe.Exists(ctx, uri)
	}), 16, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, DefaultAssetIcon, r.ResolveAsset(ctx, "base", "ETH"))
	assert.Equal(t, "/images/assets/base/ETH.svg", r.ResolveAsset(context.Background(), "base", "ETH"))
}

func TestCachedLookupsNeverProbe(t *testing.T) {
	probe := newRecordingProbe("/images/single-assets/ETH.svg")
	r, err := NewResolver(probe, 16, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "/images/networks/base.svg", r.CachedNetwork("base"))
	icons := r.CachedAssets("base", []string{"usdc", "eth", "a", "b", "c"})
	require.Len(t, icons, MaxStacked)
	assert.Equal(t, Candidates("base", "usdc")[0], icons[0].URI)
	assert.Equal(t, Layout(5, 1), icons[1].Placement)
	assert.Empty(t, probe.calls)

	r.ResolveNetwork(context.Background(), "base")
	r.ResolveAsset(context.Background(), "base", "ETH")
	calls := len(probe.calls)

	assert.Equal(t, DefaultNetworkIcon, r.CachedNetwork("base"))
	assert.Equal(t, "/images/single-assets/ETH.svg", r.CachedAssets("BASE", []string{"eth"})[0].URI)
	assert.Len(t, probe.calls, calls)
}

func TestFileProbe(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "images", "networks")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.svg"), []byte("<svg/>"), 0o644))

	p := FileProbe{Root: root}
	assert.True(t, p.Exists(context.Background(), "/images/networks/base.svg"))
	assert.False(t, p.Exists(context.Background(), "/images/networks/op.svg"))
	assert.False(t, p.Exists(context.Background(), "/images/networks"), "directories are not icons")
	assert.False(t, p.Exists(context.Background(), ""))
}

func TestHTTPProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/images/networks/base.svg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProbe(srv.URL+"/", 100, time.Second)
	assert.True(t, p.Exists(context.Background(), "/images/networks/base.svg"))
	assert.False(t, p.Exists(context.Background(), "/images/networks/missing.svg"))
	assert.False(t, p.Exists(context.Background(), ""))
}
