// Package icon resolves asset and network logos for vault rows.
//
// Every icon starts from an ordered list of candidate URIs. A view tries the
// active source and calls Advance on each load failure until the list runs
// out; the last tried source then stays in place.
package icon

import "strings"

const (
	assetDir       = "/images/assets/"
	singleAssetDir = "/images/single-assets/"
	networkDir     = "/images/networks/"

	// DefaultAssetIcon is the last candidate of every asset chain.
	DefaultAssetIcon = singleAssetDir + "default.svg"
	// DefaultNetworkIcon replaces a network logo that failed to load.
	DefaultNetworkIcon = networkDir + "default.svg"
)

// Candidates returns the lookup order for an asset logo: chain specific art
// first, then the shared single-asset set, then the placeholder. The result is
// a fresh slice and depends only on its inputs.
func Candidates(chain, symbol string) []string {
	chain = strings.ToLower(strings.TrimSpace(chain))
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	return []string{
		assetDir + chain + "/" + symbol + ".svg",
		assetDir + chain + "/" + symbol + ".png",
		singleAssetDir + symbol + ".svg",
		singleAssetDir + symbol + ".png",
		DefaultAssetIcon,
	}
}

// NetworkURI returns the primary logo of a chain. The chain id is used as
// given; only asset candidates normalise case.
func NetworkURI(chain string) string {
	return networkDir + chain + ".svg"
}
