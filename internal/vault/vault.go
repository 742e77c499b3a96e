// Package vault holds the vault model and the pure pipeline that turns a raw
// vault snapshot into the ordered, formatted list a view renders.
package vault

import "slices"

// TagEOL marks a vault as end-of-life. Matching is exact and case-sensitive.
const TagEOL = "EOL"

// Vault is one yield-bearing position as supplied by the fetch collaborator.
// Vaults are treated as immutable once they enter a snapshot.
type Vault struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Chain    string   `json:"chain"`
	Assets   []string `json:"assets"`
	APY      Value    `json:"apy"`
	Daily    Value    `json:"daily"`
	TVL      Value    `json:"tvl"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

// HasTag reports whether the vault carries tag.
func (v Vault) HasTag(tag string) bool {
	return slices.Contains(v.Tags, tag)
}

// IsEOL reports whether the vault is end-of-life.
func (v Vault) IsEOL() bool {
	return v.HasTag(TagEOL)
}
