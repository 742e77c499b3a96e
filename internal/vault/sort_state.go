package vault

import "strings"

// Direction of an active sort.
type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseDirection accepts "asc"/"ascending" and "desc"/"descending".
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending", "":
		return Descending, true
	default:
		return Descending, false
	}
}

// SortState is either Unsorted (the zero value) or Sorted(field, direction).
//
// Activating the same field cycles desc -> asc -> unsorted; activating another
// field always starts it descending.
type SortState struct {
	field Field
	dir   Direction
}

// Unsorted returns the initial state.
func Unsorted() SortState {
	return SortState{}
}

// SortedBy returns Sorted(f, d). An invalid field yields Unsorted.
func SortedBy(f Field, d Direction) SortState {
	if !f.Valid() {
		return Unsorted()
	}
	return SortState{field: f, dir: d}
}

// Activate applies one user activation of f and returns the next state.
// Fields outside the enumeration leave the state unchanged.
func (s SortState) Activate(f Field) SortState {
	if !f.Valid() {
		return s
	}

	switch {
	case s.field != f:
		return SortState{field: f, dir: Descending}
	case s.dir == Descending:
		return SortState{field: f, dir: Ascending}
	default:
		return Unsorted()
	}
}

// IsSorted reports whether a field is active.
func (s SortState) IsSorted() bool {
	return s.field.Valid()
}

// Field returns the active field, or 0 when unsorted.
func (s SortState) Field() Field {
	return s.field
}

// Direction returns the active direction. It is meaningless when unsorted.
func (s SortState) Direction() Direction {
	return s.dir
}

// Is reports whether the state is Sorted(f, d).
func (s SortState) Is(f Field, d Direction) bool {
	return s.IsSorted() && s.field == f && s.dir == d
}

func (s SortState) String() string {
	if !s.IsSorted() {
		return "unsorted"
	}
	return s.field.Key() + " " + s.dir.String()
}
