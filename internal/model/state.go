package model

// State is a second-level region belonging to exactly one zone.
type State struct {
	ID      int    `json:"id" yaml:"id" csv:"id"`
	Name    string `json:"name" yaml:"name" csv:"name"`
	Capital string `json:"capital" yaml:"capital" csv:"capital"`
	ZoneID  int    `json:"zone_id" yaml:"zone_id" csv:"zone_id"`
	Zone    string `json:"zone" yaml:"zone" csv:"zone"`
}

func (s State) String() string { return s.Name }

// LocalGovernment is a local government area belonging to exactly one state.
type LocalGovernment struct {
	ID      int    `json:"id" yaml:"id" csv:"id"`
	Name    string `json:"name" yaml:"name" csv:"name"`
	StateID int    `json:"state_id" yaml:"state_id" csv:"state_id"`
	State   string `json:"state" yaml:"state" csv:"state"`
}

// String renders the LGA qualified by its state, e.g. "Lagos: Badagry".
func (l LocalGovernment) String() string {
	return l.State + ": " + l.Name
}

// ZoneInfo summarises a zone with its states and LGAs.
type ZoneInfo struct {
	Zone       string   `json:"zone"`
	NoOfStates int      `json:"no_of_states"`
	States     []string `json:"states"`
	NoOfLGAs   int      `json:"no_of_lgas"`
	LGAs       []string `json:"lgas"`
}

// Counts holds the row count of each reference table.
type Counts struct {
	Zones  int `json:"zones"`
	States int `json:"states"`
	LGAs   int `json:"lgas"`
}
