package model

import "time"

// FixtureLoad records one load of the reference fixture into a store.
type FixtureLoad struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Zones    int       `json:"zones"`
	States   int       `json:"states"`
	LGAs     int       `json:"lgas"`
	LoadedAt time.Time `json:"loaded_at"`
}
