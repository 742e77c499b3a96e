package icon

import "slices"

// Chain is the fallback cursor of one rendered asset icon.
type Chain struct {
	source    string
	remaining []string
}

// NewChain starts a cursor on the first candidate. An empty list gives an
// exhausted chain with an empty source.
func NewChain(candidates []string) *Chain {
	if len(candidates) == 0 {
		return &Chain{}
	}
	return &Chain{
		source:    candidates[0],
		remaining: slices.Clone(candidates[1:]),
	}
}

// Source is the URI currently shown.
func (c *Chain) Source() string {
	return c.source
}

// Remaining returns the candidates not tried yet.
func (c *Chain) Remaining() []string {
	return slices.Clone(c.remaining)
}

// Exhausted reports whether a failure can no longer change the source.
func (c *Chain) Exhausted() bool {
	return len(c.remaining) == 0
}

// Advance handles a load failure of the current source. It swaps in the next
// candidate and returns it with true, or returns the unchanged source with
// false once the list is used up.
func (c *Chain) Advance() (string, bool) {
	if len(c.remaining) == 0 {
		return c.source, false
	}
	c.source = c.remaining[0]
	c.remaining = c.remaining[1:]
	return c.source, true
}
