// Package store persists the zone, state and LGA reference tables in SQLite
// or Postgres.
package store

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nigerian-states/internal/fixture"
	"github.com/sells-group/nigerian-states/internal/model"
)

// ErrNotFound is returned by the Get methods when no row matches.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface for the reference data.
type Store interface {
	// Schema
	Migrate(ctx context.Context) error
	Ready(ctx context.Context) (bool, error)

	// Loading
	LoadFixture(ctx context.Context, ds *fixture.Dataset, source string) (*model.FixtureLoad, error)
	ListFixtureLoads(ctx context.Context, limit int) ([]model.FixtureLoad, error)

	// Queries
	ListZones(ctx context.Context, f model.Filter) ([]model.GeoPoliticalZone, error)
	ListStates(ctx context.Context, f model.Filter) ([]model.State, error)
	ListLGAs(ctx context.Context, f model.Filter) ([]model.LocalGovernment, error)
	GetZone(ctx context.Context, name string) (*model.GeoPoliticalZone, error)
	GetState(ctx context.Context, name string) (*model.State, error)
	Counts(ctx context.Context) (model.Counts, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// referenceTables must all exist before the store is Ready.
var referenceTables = []string{"geopolitical_zones", "states", "local_governments"}

//go:embed migrations
var migrationFS embed.FS

type migration struct {
	name string
	sql  string
}

// migrations returns the embedded .sql files for a dialect in filename order.
func migrations(dialect string) ([]migration, error) {
	dir := "migrations/" + dialect
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read %s migrations", dialect)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]migration, 0, len(entries))
	for _, e := range entries {
		data, err := migrationFS.ReadFile(dir + "/" + e.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "store: read migration %s", e.Name())
		}
		out = append(out, migration{name: e.Name(), sql: string(data)})
	}
	return out, nil
}
