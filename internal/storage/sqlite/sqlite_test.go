package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/storage"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

func newTestStorage(t *testing.T) storage.Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "data", "vaults.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLatestBeforeSave(t *testing.T) {
	s := newTestStorage(t)
	_, _, err := s.Latest(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)
}

func TestSaveAndLatestRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	fetchedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := []vault.Vault{
		{ID: "b", Name: "Second", Chain: "base", Assets: []string{"ETH", "USDC"},
			APY: vault.Text("12.5%"), Daily: vault.Number(0.0342), TVL: vault.Text("$1,000"),
			Tags: []string{vault.TagEOL, "aerodrome"}, Category: "lp"},
		{ID: "a", Name: "First", Chain: "ethereum", Assets: []string{"WBTC"},
			APY: vault.Number(3), TVL: vault.Number(2_000_000)},
	}
	require.NoError(t, s.Save(ctx, in, fetchedAt))

	out, at, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, fetchedAt.Equal(at))
	require.Len(t, out, 2)

	assert.Equal(t, "b", out[0].ID, "saved order is kept")
	assert.Equal(t, "12.5%", out[0].APY.RawValue())
	assert.Equal(t, "$1,000", out[0].TVL.RawValue())
	assert.Equal(t, 0.0342, out[0].Daily.Float())
	assert.True(t, out[0].IsEOL())
	assert.Equal(t, []string{"ETH", "USDC"}, out[0].Assets)

	assert.True(t, out[1].Daily.IsAbsent())
	assert.Nil(t, out[1].Tags)
	assert.Equal(t, 2_000_000.0, out[1].TVL.Float())
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []vault.Vault{{ID: "old", Name: "Old"}}, time.Now()))
	require.NoError(t, s.Save(ctx, []vault.Vault{{ID: "new", Name: "New"}}, time.Now()))

	out, _, err := s.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].ID)
}

func TestSaveEmptyList(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, nil, time.Now()))
	out, _, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestReopenKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaults.db")
	ctx := context.Background()

	s, err := NewStorage(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []vault.Vault{{ID: "x", Name: "X"}}, time.Now()))
	require.NoError(t, s.Close())

	s, err = NewStorage(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	out, _, err := s.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "x", out[0].ID)
}
