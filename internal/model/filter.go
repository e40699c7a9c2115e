package model

// Filter narrows list queries over the reference data.
//
// Zones restricts results to members of the named zones (an empty slice means
// no restriction). State restricts LGAs to a single state by exact name.
// Limit <= 0 means no limit.
type Filter struct {
	Zones  []string `json:"zones,omitempty"`
	State  string   `json:"state,omitempty"`
	Limit  int      `json:"limit,omitempty"`
	Offset int      `json:"offset,omitempty"`
}

// HasZone reports whether zone passes the zone restriction.
func (f Filter) HasZone(zone string) bool {
	if len(f.Zones) == 0 {
		return true
	}
	for _, z := range f.Zones {
		if z == zone {
			return true
		}
	}
	return false
}

// Page applies Offset and Limit to items.
func Page[T any](items []T, f Filter) []T {
	if f.Offset > 0 {
		if f.Offset >= len(items) {
			return []T{}
		}
		items = items[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(items) {
		items = items[:f.Limit]
	}
	return items
}

// Pluck projects one value out of every item, preserving order.
func Pluck[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, len(items))
	for i, it := range items {
		out[i] = fn(it)
	}
	return out
}
