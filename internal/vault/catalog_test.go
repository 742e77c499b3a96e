package vault

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCatalogReadersSeeWholeSnapshots(t *testing.T) {
	c := NewCatalog()
	small := testVaults()[:1]
	full := testVaults()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 200 {
			if i%2 == 0 {
				c.Replace(small, time.Now())
			} else {
				c.Replace(full, time.Now())
			}
		}
	}()

	for range 200 {
		n := len(c.Snapshot().Vaults)
		assert.Contains(t, []int{0, len(small), len(full)}, n)
	}
	wg.Wait()
}

func TestSnapshotDistinctSkipsEmpty(t *testing.T) {
	snap := &Snapshot{Vaults: []Vault{
		{ID: "a", Chain: "base"},
		{ID: "b", Chain: "base", Category: "lp"},
		{ID: "c"},
	}}
	assert.Equal(t, []string{"base"}, snap.Chains())
	assert.Equal(t, []string{"lp"}, snap.Categories())
	assert.Empty(t, (&Snapshot{}).Chains())
}
