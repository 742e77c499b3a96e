package icon

// MaxStacked is the number of asset icons drawn per vault.
const MaxStacked = 4

// boxSize is the side of the square the stacked icons share.
const boxSize = 40

// Placement positions one asset icon inside the stack box.
type Placement struct {
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`
	Size    int `json:"size"`
	Z       int `json:"z"`
}

// Layout places icon idx of a vault with count assets. Earlier assets get a
// higher Z so the first asset is drawn on top.
func Layout(count, idx int) Placement {
	n := min(count, MaxStacked)
	if n <= 0 || idx < 0 || idx >= n {
		return Placement{}
	}

	p := Placement{Z: n - idx}
	switch n {
	case 1:
		p.Size = boxSize
	case 2:
		p.Size = 28
		p.OffsetX = idx * 12
		p.OffsetY = idx * 12
	case 3:
		p.Size = 24
		offsets := [3][2]int{{8, 0}, {0, 16}, {16, 16}}
		p.OffsetX, p.OffsetY = offsets[idx][0], offsets[idx][1]
	default:
		p.Size = boxSize / 2
		p.OffsetX = (idx % 2) * p.Size
		p.OffsetY = (idx / 2) * p.Size
	}
	return p
}
