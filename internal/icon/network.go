package icon

// NetworkIcon is a chain logo with a single placeholder fallback.
type NetworkIcon struct {
	source   string
	fellBack bool
}

// NewNetworkIcon starts on the chain's own logo.
func NewNetworkIcon(chain string) *NetworkIcon {
	return &NetworkIcon{source: NetworkURI(chain)}
}

// Source is the URI currently shown.
func (n *NetworkIcon) Source() string {
	return n.source
}

// FellBack reports whether the placeholder has been swapped in.
func (n *NetworkIcon) FellBack() bool {
	return n.fellBack
}

// Fail handles a load failure. Only the first call swaps to the placeholder;
// later failures, including one of the placeholder itself, are ignored.
func (n *NetworkIcon) Fail() bool {
	if n.fellBack {
		return false
	}
	n.fellBack = true
	n.source = DefaultNetworkIcon
	return true
}
