// Package beefy fetches vault listings from a Beefy-compatible HTTP API and
// maps them onto vault records.
package beefy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rovshanmuradov/vault-browser/internal/metrics"
	"github.com/rovshanmuradov/vault-browser/internal/numeric"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// ErrUnexpectedStatus is wrapped by every non-2xx response error.
var ErrUnexpectedStatus = errors.New("unexpected status")

const (
	statusEOL    = "eol"
	statusPaused = "paused"
	// TagPaused marks vaults that accept no deposits for now.
	TagPaused = "Paused"
)

// Source is anything that can produce the full vault list.
type Source interface {
	FetchVaults(ctx context.Context) ([]vault.Vault, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	// RateLimit is the number of requests per second across all endpoints.
	RateLimit float64
	// Chains restricts the result to these chain ids when non-empty.
	Chains []string
}

// Client talks to the /vaults, /apy and /tvl endpoints.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	retries int
	chains  []string
	logger  *zap.Logger
}

// NewClient creates a client. Zero options fall back to one request per
// second, a 15s timeout and no retries.
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 3),
		retries: max(opts.Retries, 0),
		chains:  opts.Chains,
		logger:  logger.Named("beefy"),
	}
}

// apiVault is the subset of the /vaults payload the browser uses.
type apiVault struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Chain          string   `json:"chain"`
	Assets         []string `json:"assets"`
	Status         string   `json:"status"`
	PlatformID     string   `json:"platformId"`
	StrategyTypeID string   `json:"strategyTypeId"`
	Type           string   `json:"type"`
}

// FetchVaults downloads the three endpoints concurrently and merges them.
func (c *Client) FetchVaults(ctx context.Context) ([]vault.Vault, error) {
	start := time.Now()

	var (
		vaults []apiVault
		apys   map[string]any
		tvls   map[string]map[string]any
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(gCtx, "/vaults", &vaults) })
	g.Go(func() error { return c.getJSON(gCtx, "/apy", &apys) })
	g.Go(func() error { return c.getJSON(gCtx, "/tvl", &tvls) })

	if err := g.Wait(); err != nil {
		metrics.RecordFetch("failure", time.Since(start))
		return nil, err
	}

	out := merge(vaults, apys, tvls, c.chains)
	metrics.RecordFetch("success", time.Since(start))
	c.logger.Info("Vaults fetched",
		zap.Int("count", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	operation := func() (struct{}, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, c.do(ctx, path, dst)
	}

	notify := func(err error, d time.Duration) {
		c.logger.Warn("Retrying request",
			zap.String("path", path),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.retries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// merge joins the three payloads in /vaults order. APY comes as a fraction
// and is stored in percent; TVL is summed over every chain entry of the id.
func merge(list []apiVault, apys map[string]any, tvls map[string]map[string]any, chains []string) []vault.Vault {
	tvlByID := make(map[string]float64)
	for _, byVault := range tvls {
		for id, raw := range byVault {
			if raw != nil {
				tvlByID[id] += numeric.Coerce(raw)
			}
		}
	}

	out := make([]vault.Vault, 0, len(list))
	for _, av := range list {
		if len(chains) > 0 && !slices.Contains(chains, av.Chain) {
			continue
		}

		v := vault.Vault{
			ID:       av.ID,
			Name:     av.Name,
			Chain:    av.Chain,
			Assets:   av.Assets,
			Category: av.StrategyTypeID,
		}
		if v.Category == "" {
			v.Category = av.Type
		}

		if raw, ok := apys[av.ID]; ok && raw != nil {
			apy := numeric.Coerce(raw) * 100
			v.APY = vault.Number(apy)
			v.Daily = vault.Number(apy / 365)
		}
		if tvl, ok := tvlByID[av.ID]; ok {
			v.TVL = vault.Number(tvl)
		}

		switch av.Status {
		case statusEOL:
			v.Tags = append(v.Tags, vault.TagEOL)
		case statusPaused:
			v.Tags = append(v.Tags, TagPaused)
		}
		if av.PlatformID != "" {
			v.Tags = append(v.Tags, av.PlatformID)
		}
		out = append(out, v)
	}
	return out
}
