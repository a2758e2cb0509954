package genotype

import "strings"

// Marker is a single rsID → genotype call.
type Marker struct {
	ID       string
	Genotype Genotype
}

// MarkerMap maps marker identifiers (normally rsIDs) to genotypes.
// Keys are unique and a later Set for the same key replaces the value while
// keeping the key's first-insertion position. The zero value is ready to use.
type MarkerMap struct {
	order []string
	calls map[string]Genotype
}

// NewMarkerMap creates an empty MarkerMap.
func NewMarkerMap() *MarkerMap {
	return &MarkerMap{calls: make(map[string]Genotype)}
}

// IsRSID reports whether id carries the literal "rs" prefix.
func IsRSID(id string) bool {
	return strings.HasPrefix(id, "rs")
}

// Set records a call for id. Last write wins.
func (m *MarkerMap) Set(id string, g Genotype) {
	if m.calls == nil {
		m.calls = make(map[string]Genotype)
	}
	if _, ok := m.calls[id]; !ok {
		m.order = append(m.order, id)
	}
	m.calls[id] = g
}

// Get returns the call for id.
func (m *MarkerMap) Get(id string) (Genotype, bool) {
	if m == nil {
		return Genotype{}, false
	}
	g, ok := m.calls[id]
	return g, ok
}

// Len returns the number of distinct markers.
func (m *MarkerMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Markers returns all calls in first-insertion order.
func (m *MarkerMap) Markers() []Marker {
	return m.Preview(m.Len())
}

// Preview returns up to limit calls in first-insertion order.
// A non-positive limit returns nothing.
func (m *MarkerMap) Preview(limit int) []Marker {
	if m == nil || limit <= 0 {
		return nil
	}
	if limit > len(m.order) {
		limit = len(m.order)
	}
	out := make([]Marker, 0, limit)
	for _, id := range m.order[:limit] {
		out = append(out, Marker{ID: id, Genotype: m.calls[id]})
	}
	return out
}

// Subset returns the calls for the given ids that are present, in the order
// the ids were requested.
func (m *MarkerMap) Subset(ids []string) []Marker {
	var out []Marker
	for _, id := range ids {
		if g, ok := m.Get(id); ok {
			out = append(out, Marker{ID: id, Genotype: g})
		}
	}
	return out
}

// FormatMarkers renders calls as "rs1: AA, rs2: AG".
func FormatMarkers(markers []Marker) string {
	parts := make([]string, len(markers))
	for i, mk := range markers {
		parts[i] = mk.ID + ": " + mk.Genotype.Display()
	}
	return strings.Join(parts, ", ")
}
