package icon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWarmerResolvesDistinctIcons(t *testing.T) {
	probe := newRecordingProbe("/images/networks/base.svg", "/images/single-assets/ETH.svg")
	r, err := NewResolver(probe, 64, zap.NewNop())
	require.NoError(t, err)
	w := NewWarmer(r, zap.NewNop())
	defer w.Close()

	w.Warm([]Target{
		{Chain: "base", Assets: []string{"ETH", "USDC"}},
		{Chain: "base", Assets: []string{"eth"}},
	})
	w.Wait()

	assert.Equal(t, "/images/networks/base.svg", r.CachedNetwork("base"))
	assert.Equal(t, "/images/single-assets/ETH.svg", r.CachedAssets("base", []string{"ETH"})[0].URI)
	assert.Equal(t, DefaultAssetIcon, r.CachedAssets("base", []string{"USDC"})[0].URI)
	// network 1 + ETH 3 + USDC 5, each identity probed once
	assert.Len(t, probe.calls, 9)
}

func TestWarmerRetriesFailuresOnNextSnapshot(t *testing.T) {
	probe := newRecordingProbe()
	r, err := NewResolver(probe, 64, zap.NewNop())
	require.NoError(t, err)
	w := NewWarmer(r, zap.NewNop())
	defer w.Close()

	targets := []Target{{Chain: "base", Assets: []string{"ETH"}}}
	w.Warm(targets)
	w.Wait()
	assert.Equal(t, DefaultAssetIcon, r.CachedAssets("base", []string{"ETH"})[0].URI)

	// The art shows up upstream before the next snapshot arrives.
	probe.mu.Lock()
	probe.ok["/images/assets/base/ETH.svg"] = true
	probe.mu.Unlock()

	w.Warm(targets)
	w.Wait()
	assert.Equal(t, "/images/assets/base/ETH.svg", r.CachedAssets("base", []string{"ETH"})[0].URI)
}

func TestWarmerCloseCancelsPass(t *testing.T) {
	started := make(chan struct{}, 1)
	r, err := NewResolver(ProbeFunc(func(ctx context.Context, _ string) bool {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return false
	}), 16, zap.NewNop())
	require.NoError(t, err)

	w := NewWarmer(r, zap.NewNop())
	w.Warm([]Target{{Chain: "base", Assets: []string{"ETH"}}})
	<-started
	w.Close()

	assert.Equal(t, "/images/networks/base.svg", r.CachedNetwork("base"), "cancelled lookups are not cached")
	w.Warm([]Target{{Chain: "base"}})
	w.Wait()
}
