package beefy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

const vaultsJSON = `[
  {"id":"curve-eth","name":"Curve ETH","chain":"ethereum","assets":["ETH","stETH"],"status":"active","platformId":"curve","strategyTypeId":"lp"},
  {"id":"cake-old","name":"CAKE","chain":"bsc","assets":["CAKE"],"status":"eol","platformId":"pancakeswap","type":"standard"},
  {"id":"aero-paused","name":"AERO","chain":"base","assets":["AERO"],"status":"paused"},
  {"id":"no-data","name":"Fresh","chain":"base","assets":["USDC"],"status":"active"}
]`

const apyJSON = `{"curve-eth":0.0365,"cake-old":1.2,"aero-paused":null}`

const tvlJSON = `{"1":{"curve-eth":1000000.5},"56":{"cake-old":"900"},"8453":{"aero-paused":10},"42161":{"curve-eth":500}}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func beefyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/vaults":
		_, _ = w.Write([]byte(vaultsJSON))
	case "/apy":
		_, _ = w.Write([]byte(apyJSON))
	case "/tvl":
		_, _ = w.Write([]byte(tvlJSON))
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(url string, opts Options) *Client {
	opts.BaseURL = url
	if opts.RateLimit == 0 {
		opts.RateLimit = 1000
	}
	return NewClient(opts, zap.NewNop())
}

func TestFetchVaultsMergesEndpoints(t *testing.T) {
	srv := newTestServer(t, beefyHandler)
	c := newTestClient(srv.URL, Options{})

	got, err := c.FetchVaults(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)

	curve := got[0]
	assert.Equal(t, "curve-eth", curve.ID)
	assert.InDelta(t, 3.65, curve.APY.Float(), 1e-9)
	assert.InDelta(t, 0.01, curve.Daily.Float(), 1e-9)
	assert.InDelta(t, 1000500.5, curve.TVL.Float(), 1e-9, "tvl sums every chain entry")
	assert.Equal(t, "lp", curve.Category)
	assert.Equal(t, []string{"curve"}, curve.Tags)

	cake := got[1]
	assert.True(t, cake.IsEOL())
	assert.Equal(t, "standard", cake.Category, "type is the category fallback")
	assert.Equal(t, 900.0, cake.TVL.Float())
	assert.Equal(t, "120.00", vault.FormatAPY(cake.APY), "apy is stored in percent")

	paused := got[2]
	assert.True(t, paused.HasTag(TagPaused))
	assert.True(t, paused.APY.IsAbsent(), "null apy stays absent")

	fresh := got[3]
	assert.True(t, fresh.APY.IsAbsent())
	assert.True(t, fresh.TVL.IsAbsent())
	assert.Nil(t, fresh.Tags)
}

func TestFetchVaultsChainAllowList(t *testing.T) {
	srv := newTestServer(t, beefyHandler)
	c := newTestClient(srv.URL, Options{Chains: []string{"base"}})

	got, err := c.FetchVaults(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, v := range got {
		assert.Equal(t, "base", v.Chain)
	}
}

func TestFetchVaultsRetriesServerErrors(t *testing.T) {
	var apyCalls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/apy" && apyCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		beefyHandler(w, r)
	})
	c := newTestClient(srv.URL, Options{Retries: 2})

	got, err := c.FetchVaults(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, int32(2), apyCalls.Load())
}

func TestFetchVaultsClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tvl" {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		beefyHandler(w, r)
	})
	c := newTestClient(srv.URL, Options{Retries: 3})

	_, err := c.FetchVaults(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "/tvl")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchVaultsCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	defer close(block)

	c := newTestClient(srv.URL, Options{Timeout: 5 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchVaults(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil)
}

type fakeSource struct {
	vaults []vault.Vault
	err    error
}

func (f fakeSource) FetchVaults(context.Context) ([]vault.Vault, error) {
	return f.vaults, f.err
}

type memoryStore struct {
	vaults  []vault.Vault
	at      time.Time
	saved   int
	saveErr error
}

func (m *memoryStore) Save(_ context.Context, vaults []vault.Vault, at time.Time) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.vaults, m.at = vaults, at
	m.saved++
	return nil
}

func (m *memoryStore) Latest(context.Context) ([]vault.Vault, time.Time, error) {
	if m.saved == 0 {
		return nil, time.Time{}, errors.New("empty")
	}
	return m.vaults, m.at, nil
}

func TestCachedSourceSavesAndFallsBack(t *testing.T) {
	store := &memoryStore{}
	live := []vault.Vault{{ID: "a", Name: "A"}}

	c := NewCachedSource(fakeSource{vaults: live}, store, zap.NewNop())
	got, err := c.FetchVaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live, got)
	assert.Equal(t, 1, store.saved)

	offline := NewCachedSource(fakeSource{err: errors.New("down")}, store, zap.NewNop())
	got, err = offline.FetchVaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live, got)
}

func TestCachedSourceWithoutSnapshot(t *testing.T) {
	down := errors.New("down")
	c := NewCachedSource(fakeSource{err: down}, &memoryStore{}, zap.NewNop())

	_, err := c.FetchVaults(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
}

func TestCachedSourceIgnoresSaveFailure(t *testing.T) {
	live := []vault.Vault{{ID: "a"}}
	c := NewCachedSource(fakeSource{vaults: live}, &memoryStore{saveErr: errors.New("disk full")}, zap.NewNop())

	got, err := c.FetchVaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live, got)
}
