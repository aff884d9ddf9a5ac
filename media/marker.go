package media

import "time"

// MarkerType is the kind of time window a marker flags.
type MarkerType string

const (
	MarkerIntro   MarkerType = "intro"
	MarkerCredits MarkerType = "credits"
)

// Marker is an immutable [Start, End) window within an item.
type Marker struct {
	Type  MarkerType
	Start time.Duration
	End   time.Duration
}

// Contains reports whether pos falls inside the half-open window.
func (m Marker) Contains(pos time.Duration) bool {
	return pos >= m.Start && pos < m.End
}

// MarkerAt returns the first marker containing pos.
func MarkerAt(markers []Marker, pos time.Duration) (Marker, bool) {
	for _, m := range markers {
		if m.Contains(pos) {
			return m, true
		}
	}
	return Marker{}, false
}
