package model

import "github.com/rotisserie/eris"

// PoliticalZone names one of Nigeria's six geopolitical zones.
type PoliticalZone string

// Geopolitical zones, in fixture order.
const (
	NorthCentral PoliticalZone = "North Central"
	NorthEast    PoliticalZone = "North East"
	NorthWest    PoliticalZone = "North West"
	SouthEast    PoliticalZone = "South East"
	SouthSouth   PoliticalZone = "South South"
	SouthWest    PoliticalZone = "South West"
)

// AllZones returns every geopolitical zone in fixture order.
func AllZones() []PoliticalZone {
	return []PoliticalZone{NorthCentral, NorthEast, NorthWest, SouthEast, SouthSouth, SouthWest}
}

// ZoneNames returns the names of every geopolitical zone in fixture order.
func ZoneNames() []string {
	zones := AllZones()
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = string(z)
	}
	return names
}

// Valid reports whether z is one of the six zones. Matching is exact.
func (z PoliticalZone) Valid() bool {
	for _, known := range AllZones() {
		if z == known {
			return true
		}
	}
	return false
}

// ParseZone validates s as a zone name.
func ParseZone(s string) (PoliticalZone, error) {
	z := PoliticalZone(s)
	if !z.Valid() {
		return "", eris.Errorf("model: unknown geopolitical zone %q", s)
	}
	return z, nil
}

// GeoPoliticalZone is a zone row.
type GeoPoliticalZone struct {
	ID   int    `json:"id" yaml:"id" csv:"id"`
	Name string `json:"name" yaml:"name" csv:"name"`
}

func (z GeoPoliticalZone) String() string { return z.Name }
