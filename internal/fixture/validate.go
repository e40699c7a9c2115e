package fixture

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nigerian-states/internal/model"
)

func (ds *Dataset) sort() {
	slices.SortStableFunc(ds.Zones, func(a, b model.GeoPoliticalZone) int { return a.ID - b.ID })
	slices.SortStableFunc(ds.States, func(a, b model.State) int { return a.ID - b.ID })
	slices.SortStableFunc(ds.LGAs, func(a, b model.LocalGovernment) int { return a.ID - b.ID })
}

// link fills the denormalized zone and state names from the foreign keys.
func (ds *Dataset) link() error {
	zoneName := make(map[int]string, len(ds.Zones))
	for _, z := range ds.Zones {
		zoneName[z.ID] = z.Name
	}
	stateName := make(map[int]string, len(ds.States))
	for i := range ds.States {
		s := &ds.States[i]
		name, ok := zoneName[s.ZoneID]
		if !ok {
			return eris.Errorf("fixture: state %q references unknown zone %d", s.Name, s.ZoneID)
		}
		s.Zone = name
		stateName[s.ID] = s.Name
	}
	for i := range ds.LGAs {
		l := &ds.LGAs[i]
		name, ok := stateName[l.StateID]
		if !ok {
			return eris.Errorf("fixture: lga %q references unknown state %d", l.Name, l.StateID)
		}
		l.State = name
	}
	return nil
}

// Validate checks identity and naming rules. LGA names only need to be unique
// within their state; several names (Surulere, Obi, Bassa, ...) recur across states.
func (ds *Dataset) Validate() error {
	if len(ds.Zones) == 0 {
		return eris.New("fixture: no zones")
	}

	zoneIDs := make(map[int]bool, len(ds.Zones))
	zoneNames := make(map[string]bool, len(ds.Zones))
	for _, z := range ds.Zones {
		if zoneIDs[z.ID] {
			return eris.Errorf("fixture: duplicate zone id %d", z.ID)
		}
		if !model.PoliticalZone(z.Name).Valid() {
			return eris.Errorf("fixture: unknown zone name %q", z.Name)
		}
		if zoneNames[z.Name] {
			return eris.Errorf("fixture: duplicate zone name %q", z.Name)
		}
		zoneIDs[z.ID] = true
		zoneNames[z.Name] = true
	}

	stateIDs := make(map[int]bool, len(ds.States))
	stateNames := make(map[string]bool, len(ds.States))
	for _, s := range ds.States {
		switch {
		case s.Name == "":
			return eris.Errorf("fixture: state %d has no name", s.ID)
		case stateIDs[s.ID]:
			return eris.Errorf("fixture: duplicate state id %d", s.ID)
		case stateNames[s.Name]:
			return eris.Errorf("fixture: duplicate state name %q", s.Name)
		case !zoneIDs[s.ZoneID]:
			return eris.Errorf("fixture: state %q references unknown zone %d", s.Name, s.ZoneID)
		}
		stateIDs[s.ID] = true
		stateNames[s.Name] = true
	}

	type scoped struct {
		state int
		name  string
	}
	lgaIDs := make(map[int]bool, len(ds.LGAs))
	lgaNames := make(map[scoped]bool, len(ds.LGAs))
	for _, l := range ds.LGAs {
		key := scoped{l.StateID, l.Name}
		switch {
		case l.Name == "":
			return eris.Errorf("fixture: lga %d has no name", l.ID)
		case lgaIDs[l.ID]:
			return eris.Errorf("fixture: duplicate lga id %d", l.ID)
		case !stateIDs[l.StateID]:
			return eris.Errorf("fixture: lga %q references unknown state %d", l.Name, l.StateID)
		case lgaNames[key]:
			return eris.Errorf("fixture: duplicate lga %q in state %d", l.Name, l.StateID)
		}
		lgaIDs[l.ID] = true
		lgaNames[key] = true
	}
	return nil
}
