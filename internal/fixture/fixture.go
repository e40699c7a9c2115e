// Package fixture holds the embedded zone, state and LGA seed data and the
// loader for fixture files in the same record format.
package fixture

import (
	_ "embed"
	"encoding/json"
	"os"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nigerian-states/internal/model"
)

// Record model names.
const (
	ModelZone  = "nigerian_states.geopoliticalzone"
	ModelState = "nigerian_states.state"
	ModelLGA   = "nigerian_states.localgovernment"
)

// EmbeddedSource is the source label recorded for loads of the built-in fixture.
const EmbeddedSource = "embedded:fixtures.json"

//go:embed data/fixtures.json
var embedded []byte

// Record is one row of a fixture file.
type Record struct {
	Model  string          `json:"model"`
	PK     int             `json:"pk"`
	Fields json.RawMessage `json:"fields"`
}

type zoneFields struct {
	Name string `json:"name"`
}

type stateFields struct {
	Name    string `json:"name"`
	Capital string `json:"capital"`
	Zone    int    `json:"zone"`
}

type lgaFields struct {
	State int    `json:"state"`
	Name  string `json:"name"`
}

// Dataset is a parsed fixture. Slices are ordered by ID and cross references
// (State.Zone, LocalGovernment.State) are filled in.
type Dataset struct {
	Zones  []model.GeoPoliticalZone
	States []model.State
	LGAs   []model.LocalGovernment
}

var (
	defaultOnce sync.Once
	defaultDS   *Dataset
	defaultErr  error
)

// Default returns the embedded dataset. It is parsed and validated once.
func Default() (*Dataset, error) {
	defaultOnce.Do(func() {
		defaultDS, defaultErr = Parse(embedded)
	})
	return defaultDS, defaultErr
}

// LoadFile reads and validates a fixture file from disk.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fixture: read file")
	}
	return Parse(data)
}

// Parse decodes fixture records into a validated Dataset.
func Parse(data []byte) (*Dataset, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "fixture: unmarshal records")
	}

	ds := &Dataset{}
	for i, r := range records {
		switch r.Model {
		case ModelZone:
			var f zoneFields
			if err := json.Unmarshal(r.Fields, &f); err != nil {
				return nil, eris.Wrapf(err, "fixture: record %d: zone fields", i)
			}
			ds.Zones = append(ds.Zones, model.GeoPoliticalZone{ID: r.PK, Name: f.Name})
		case ModelState:
			var f stateFields
			if err := json.Unmarshal(r.Fields, &f); err != nil {
				return nil, eris.Wrapf(err, "fixture: record %d: state fields", i)
			}
			ds.States = append(ds.States, model.State{ID: r.PK, Name: f.Name, Capital: f.Capital, ZoneID: f.Zone})
		case ModelLGA:
			var f lgaFields
			if err := json.Unmarshal(r.Fields, &f); err != nil {
				return nil, eris.Wrapf(err, "fixture: record %d: lga fields", i)
			}
			ds.LGAs = append(ds.LGAs, model.LocalGovernment{ID: r.PK, Name: f.Name, StateID: f.State})
		default:
			return nil, eris.Errorf("fixture: record %d: unknown model %q", i, r.Model)
		}
	}

	ds.sort()
	if err := ds.link(); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Counts returns the number of rows per table.
func (ds *Dataset) Counts() model.Counts {
	return model.Counts{Zones: len(ds.Zones), States: len(ds.States), LGAs: len(ds.LGAs)}
}

// Records encodes the dataset back into fixture records.
func (ds *Dataset) Records() ([]Record, error) {
	out := make([]Record, 0, len(ds.Zones)+len(ds.States)+len(ds.LGAs))
	add := func(modelName string, pk int, fields any) error {
		raw, err := json.Marshal(fields)
		if err != nil {
			return eris.Wrapf(err, "fixture: marshal %s %d", modelName, pk)
		}
		out = append(out, Record{Model: modelName, PK: pk, Fields: raw})
		return nil
	}
	for _, z := range ds.Zones {
		if err := add(ModelZone, z.ID, zoneFields{Name: z.Name}); err != nil {
			return nil, err
		}
	}
	for _, s := range ds.States {
		if err := add(ModelState, s.ID, stateFields{Name: s.Name, Capital: s.Capital, Zone: s.ZoneID}); err != nil {
			return nil, err
		}
	}
	for _, l := range ds.LGAs {
		if err := add(ModelLGA, l.ID, lgaFields{State: l.StateID, Name: l.Name}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
