package icon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	assert.Equal(t, Placement{Size: 40, Z: 1}, Layout(1, 0))

	assert.Equal(t, Placement{Size: 28, Z: 2}, Layout(2, 0))
	assert.Equal(t, Placement{OffsetX: 12, OffsetY: 12, Size: 28, Z: 1}, Layout(2, 1))

	assert.Equal(t, Placement{OffsetX: 8, Size: 24, Z: 3}, Layout(3, 0))
	assert.Equal(t, Placement{OffsetX: 16, OffsetY: 16, Size: 24, Z: 1}, Layout(3, 2))

	assert.Equal(t, Placement{OffsetX: 20, OffsetY: 20, Size: 20, Z: 1}, Layout(4, 3))
}

func TestLayoutStacksInAssetOrder(t *testing.T) {
	for count := 1; count <= 6; count++ {
		prev := Layout(count, 0).Z
		for idx := 1; idx < min(count, MaxStacked); idx++ {
			z := Layout(count, idx).Z
			assert.Less(t, z, prev, "count=%d idx=%d", count, idx)
			prev = z
		}
	}
}

func TestLayoutOutOfRange(t *testing.T) {
	assert.Equal(t, Placement{}, Layout(0, 0))
	assert.Equal(t, Placement{}, Layout(3, 3))
	assert.Equal(t, Placement{}, Layout(6, 4), "only the first four assets are drawn")
	assert.Equal(t, Placement{}, Layout(2, -1))
}
