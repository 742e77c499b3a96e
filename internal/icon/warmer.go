package icon

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Target is one vault's worth of icons: its chain logo and the stacked assets.
type Target struct {
	Chain  string
	Assets []string
}

// Warmer resolves icons in the background so readers can use the Cached*
// lookups. Every Warm starts over: the running pass is cancelled and the
// resolver cache purged, so a re-fetch retries icons that failed before.
type Warmer struct {
	resolver *Resolver
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// NewWarmer creates a warmer over resolver.
func NewWarmer(resolver *Resolver, logger *zap.Logger) *Warmer {
	return &Warmer{
		resolver: resolver,
		logger:   logger.Named("icon_warmer"),
	}
}

// Warm purges the resolver and resolves every distinct icon of targets in a
// background goroutine. It returns immediately.
func (w *Warmer) Warm(targets []Target) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.stopLocked()

	w.resolver.Purge()

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx, targets)
	}()
}

// Wait blocks until the running pass, if any, has finished.
func (w *Warmer) Wait() {
	w.wg.Wait()
}

// Close cancels the running pass and waits for it. Later Warm calls are ignored.
func (w *Warmer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.stopLocked()
}

func (w *Warmer) stopLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.wg.Wait()
}

func (w *Warmer) run(ctx context.Context, targets []Target) {
	networks := make(map[string]struct{})
	assets := make(map[string]struct{})
	resolved := 0

	for _, t := range targets {
		if _, ok := networks[t.Chain]; !ok {
			networks[t.Chain] = struct{}{}
			w.resolver.ResolveNetwork(ctx, t.Chain)
			resolved++
		}
		for _, symbol := range t.Assets[:min(len(t.Assets), MaxStacked)] {
			key := assetKey(t.Chain, symbol)
			if _, ok := assets[key]; ok {
				continue
			}
			assets[key] = struct{}{}
			w.resolver.ResolveAsset(ctx, t.Chain, symbol)
			resolved++
		}
		if ctx.Err() != nil {
			w.logger.Debug("Icon warm-up cancelled", zap.Int("resolved", resolved))
			return
		}
	}
	w.logger.Info("Icon warm-up finished", zap.Int("icons", resolved))
}
