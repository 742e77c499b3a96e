package vault

import (
	"slices"
	"strings"
)

// Criteria is the transient filter a view builds from user input.
type Criteria struct {
	Search     string   // case-insensitive substring of the name
	Chains     []string // empty means every chain
	Category   string   // empty means every category
	MinimumTVL float64
	ShowEOL    bool
}

// matcher is Criteria with the search string folded once per View call.
type matcher struct {
	Criteria
	search string
}

func (c Criteria) matcher() matcher {
	return matcher{Criteria: c, search: strings.ToLower(c.Search)}
}

// Match reports whether v passes all five predicates.
func (c Criteria) Match(v Vault) bool {
	return c.matcher().match(v)
}

func (m matcher) match(v Vault) bool {
	if !m.ShowEOL && v.IsEOL() {
		return false
	}
	if !strings.Contains(strings.ToLower(v.Name), m.search) {
		return false
	}
	if len(m.Chains) > 0 && !slices.Contains(m.Chains, v.Chain) {
		return false
	}
	if m.Category != "" && v.Category != m.Category {
		return false
	}
	return v.TVL.Float() >= m.MinimumTVL
}

// View filters vaults by c and orders the survivors by s.
//
// The input slice is never modified. Without an active sort field the filtered
// vaults keep their input order; with one, ties keep their filtered order.
func View(vaults []Vault, c Criteria, s SortState) []Vault {
	m := c.matcher()

	out := make([]Vault, 0, len(vaults))
	for _, v := range vaults {
		if m.match(v) {
			out = append(out, v)
		}
	}

	if !s.IsSorted() || len(out) < 2 {
		return out
	}

	type keyed struct {
		v   Vault
		key float64
	}
	rows := make([]keyed, len(out))
	for i, v := range out {
		rows[i] = keyed{v: v, key: s.Field().Of(v).Float()}
	}

	desc := s.Direction() == Descending
	slices.SortStableFunc(rows, func(a, b keyed) int {
		if desc {
			return compareKeys(b.key, a.key)
		}
		return compareKeys(a.key, b.key)
	})

	for i := range rows {
		out[i] = rows[i].v
	}
	return out
}

// compareKeys orders numbers. NaN compares equal to everything.
func compareKeys(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
