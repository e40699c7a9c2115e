// Package geo indexes the zone, state and LGA hierarchy in memory and answers
// membership and lookup questions against it.
package geo

import (
	"context"
	"errors"

	"github.com/sells-group/nigerian-states/internal/fixture"
	"github.com/sells-group/nigerian-states/internal/model"
)

// ErrNotFound is returned when a name does not resolve to an entity.
var ErrNotFound = errors.New("geo: not found")

// Directory is an immutable index over a fixture dataset. It is safe for
// concurrent use. Name lookups are exact and case-sensitive.
type Directory struct {
	zones  []model.GeoPoliticalZone
	states []model.State
	lgas   []model.LocalGovernment

	zoneByName   map[string]model.GeoPoliticalZone
	stateByName  map[string]model.State
	statesByZone map[string][]model.State
	lgasByState  map[string][]model.LocalGovernment
	lgasByZone   map[string][]model.LocalGovernment

	resolver *resolver
}

// New builds a Directory from ds. The dataset must already be validated.
func New(ds *fixture.Dataset) *Directory {
	d := &Directory{
		zones:        ds.Zones,
		states:       ds.States,
		lgas:         ds.LGAs,
		zoneByName:   make(map[string]model.GeoPoliticalZone, len(ds.Zones)),
		stateByName:  make(map[string]model.State, len(ds.States)),
		statesByZone: make(map[string][]model.State, len(ds.Zones)),
		lgasByState:  make(map[string][]model.LocalGovernment, len(ds.States)),
		lgasByZone:   make(map[string][]model.LocalGovernment, len(ds.Zones)),
	}
	for _, z := range ds.Zones {
		d.zoneByName[z.Name] = z
	}
	for _, s := range ds.States {
		d.stateByName[s.Name] = s
		d.statesByZone[s.Zone] = append(d.statesByZone[s.Zone], s)
	}
	for _, l := range ds.LGAs {
		d.lgasByState[l.State] = append(d.lgasByState[l.State], l)
		zone := d.stateByName[l.State].Zone
		d.lgasByZone[zone] = append(d.lgasByZone[zone], l)
	}
	d.resolver = newResolver(ds.States)
	return d
}

// Default builds a Directory over the embedded fixture.
func Default() (*Directory, error) {
	ds, err := fixture.Default()
	if err != nil {
		return nil, err
	}
	return New(ds), nil
}

// Zones returns every zone in ID order.
func (d *Directory) Zones() []model.GeoPoliticalZone { return clone(d.zones) }

// States returns every state in ID order.
func (d *Directory) States() []model.State { return clone(d.states) }

// LGAs returns every LGA in ID order.
func (d *Directory) LGAs() []model.LocalGovernment { return clone(d.lgas) }

// Zone looks up a zone by name.
func (d *Directory) Zone(name string) (model.GeoPoliticalZone, bool) {
	z, ok := d.zoneByName[name]
	return z, ok
}

// State looks up a state by name.
func (d *Directory) State(name string) (model.State, bool) {
	s, ok := d.stateByName[name]
	return s, ok
}

// StatesInZone lists the states of a zone. Names that are not one of the six
// zones yield an empty list.
func (d *Directory) StatesInZone(zone string) []model.State {
	if !model.PoliticalZone(zone).Valid() {
		return []model.State{}
	}
	return clone(d.statesByZone[zone])
}

// LGAsInState lists the LGAs of a state, or an empty list for unknown states.
func (d *Directory) LGAsInState(state string) []model.LocalGovernment {
	return clone(d.lgasByState[state])
}

// LGAsInZone lists every LGA of every state in a zone.
func (d *Directory) LGAsInZone(zone string) []model.LocalGovernment {
	return clone(d.lgasByZone[zone])
}

// TotalStates counts the states in a zone.
func (d *Directory) TotalStates(zone string) int { return len(d.statesByZone[zone]) }

// TotalLGAs counts the LGAs in a zone.
func (d *Directory) TotalLGAs(zone string) int { return len(d.lgasByZone[zone]) }

// StateTotalLGAs counts the LGAs in a state.
func (d *Directory) StateTotalLGAs(state string) int { return len(d.lgasByState[state]) }

// Capital returns the capital of a state, or "" when the state is unknown.
func (d *Directory) Capital(state string) string {
	return d.stateByName[state].Capital
}

// ZoneOf returns the zone a state belongs to, or "" when the state is unknown.
func (d *Directory) ZoneOf(state string) string {
	return d.stateByName[state].Zone
}

// IsStateInZone reports whether state belongs to zone. Unknown names are false.
func (d *Directory) IsStateInZone(zone, state string) bool {
	if _, ok := d.zoneByName[zone]; !ok {
		return false
	}
	s, ok := d.stateByName[state]
	return ok && s.Zone == zone
}

// IsLGAInState reports whether state has an LGA called lga. The check is
// scoped to the state because LGA names repeat across states.
func (d *Directory) IsLGAInState(state, lga string) bool {
	for _, l := range d.lgasByState[state] {
		if l.Name == lga {
			return true
		}
	}
	return false
}

// ZoneInfo summarises a zone. The bool is false for unknown zones.
func (d *Directory) ZoneInfo(zone string) (model.ZoneInfo, bool) {
	z, ok := d.zoneByName[zone]
	if !ok {
		return model.ZoneInfo{}, false
	}
	states := d.statesByZone[z.Name]
	lgas := d.lgasByZone[z.Name]
	return model.ZoneInfo{
		Zone:       z.Name,
		NoOfStates: len(states),
		States:     model.Pluck(states, stateName),
		NoOfLGAs:   len(lgas),
		LGAs:       model.Pluck(lgas, lgaName),
	}, true
}

// Counts returns the number of zones, states and LGAs.
func (d *Directory) Counts() model.Counts {
	return model.Counts{Zones: len(d.zones), States: len(d.states), LGAs: len(d.lgas)}
}

// Ready reports whether the directory holds any zones.
func (d *Directory) Ready(context.Context) (bool, error) {
	return len(d.zones) > 0, nil
}

// ListZones returns the zones named in f.Zones, or all zones.
func (d *Directory) ListZones(_ context.Context, f model.Filter) ([]model.GeoPoliticalZone, error) {
	out := make([]model.GeoPoliticalZone, 0, len(d.zones))
	for _, z := range d.zones {
		if f.HasZone(z.Name) {
			out = append(out, z)
		}
	}
	return model.Page(out, f), nil
}

// ListStates returns states whose zone passes f.
func (d *Directory) ListStates(_ context.Context, f model.Filter) ([]model.State, error) {
	out := make([]model.State, 0, len(d.states))
	for _, s := range d.states {
		if f.HasZone(s.Zone) {
			out = append(out, s)
		}
	}
	return model.Page(out, f), nil
}

// ListLGAs returns LGAs whose state (and that state's zone) pass f.
func (d *Directory) ListLGAs(_ context.Context, f model.Filter) ([]model.LocalGovernment, error) {
	src := d.lgas
	if f.State != "" {
		src = d.lgasByState[f.State]
	}
	out := make([]model.LocalGovernment, 0, len(src))
	for _, l := range src {
		if f.HasZone(d.stateByName[l.State].Zone) {
			out = append(out, l)
		}
	}
	return model.Page(out, f), nil
}

func stateName(s model.State) string         { return s.Name }
func lgaName(l model.LocalGovernment) string { return l.Name }

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
