package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/nigerian-states/internal/fixture"
	"github.com/sells-group/nigerian-states/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Migrate applies the embedded SQLite migrations not yet recorded in
// schema_migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "store.sqlite"))

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL
	)`); err != nil {
		return eris.Wrap(err, "sqlite: ensure migration table")
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	files, err := migrations(sqliteDialect.name)
	if err != nil {
		return err
	}
	for _, m := range files {
		if applied[m.name] {
			continue
		}
		log.Info("applying migration", zap.String("file", m.name))

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return eris.Wrap(err, "sqlite: begin migration")
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback() //nolint:errcheck
			return eris.Wrapf(err, "sqlite: apply migration %s", m.name)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)`,
			m.name, time.Now().UTC(),
		); err != nil {
			tx.Rollback() //nolint:errcheck
			return eris.Wrapf(err, "sqlite: record migration %s", m.name)
		}
		if err := tx.Commit(); err != nil {
			return eris.Wrapf(err, "sqlite: commit migration %s", m.name)
		}
	}
	return nil
}

func (s *SQLiteStore) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query applied migrations")
	}
	defer rows.Close() //nolint:errcheck

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan migration row")
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// Ready reports whether every reference table exists.
func (s *SQLiteStore) Ready(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN (?, ?, ?)`,
		referenceTables[0], referenceTables[1], referenceTables[2],
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: ready")
	}
	return n == len(referenceTables), nil
}

// LoadFixture upserts the dataset by primary key in one transaction and
// records the load.
func (s *SQLiteStore) LoadFixture(ctx context.Context, ds *fixture.Dataset, source string) (*model.FixtureLoad, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load fixture: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := execEach(ctx, tx,
		`INSERT INTO geopolitical_zones (id, name) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		ds.Zones, func(z model.GeoPoliticalZone) []any { return []any{z.ID, z.Name} },
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: load fixture: zones")
	}
	if err := execEach(ctx, tx,
		`INSERT INTO states (id, name, capital, zone_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, capital = excluded.capital, zone_id = excluded.zone_id`,
		ds.States, func(st model.State) []any { return []any{st.ID, st.Name, st.Capital, st.ZoneID} },
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: load fixture: states")
	}
	if err := execEach(ctx, tx,
		`INSERT INTO local_governments (id, name, state_id) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, state_id = excluded.state_id`,
		ds.LGAs, func(l model.LocalGovernment) []any { return []any{l.ID, l.Name, l.StateID} },
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: load fixture: lgas")
	}

	load := newFixtureLoad(ds, source)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fixture_loads (id, source, zones, states, lgas, loaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		load.ID, load.Source, load.Zones, load.States, load.LGAs, load.LoadedAt,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: load fixture: record load")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: load fixture: commit")
	}
	return load, nil
}

func execEach[T any](ctx context.Context, tx *sql.Tx, query string, items []T, args func(T) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close() //nolint:errcheck

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, args(it)...); err != nil {
			return err
		}
	}
	return nil
}

// ListFixtureLoads returns the most recent loads first.
func (s *SQLiteStore) ListFixtureLoads(ctx context.Context, limit int) ([]model.FixtureLoad, error) {
	query, args := listFixtureLoadsQuery(sqliteDialect, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list fixture loads")
	}
	defer rows.Close() //nolint:errcheck

	var loads []model.FixtureLoad
	for rows.Next() {
		var l model.FixtureLoad
		if err := rows.Scan(&l.ID, &l.Source, &l.Zones, &l.States, &l.LGAs, &l.LoadedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan fixture load")
		}
		loads = append(loads, l)
	}
	return loads, eris.Wrap(rows.Err(), "sqlite: iterate fixture loads")
}

func (s *SQLiteStore) ListZones(ctx context.Context, f model.Filter) ([]model.GeoPoliticalZone, error) {
	query, args := listZonesQuery(sqliteDialect, f)
	return sqliteList(ctx, s.db, "zones", query, args, scanZone)
}

func (s *SQLiteStore) ListStates(ctx context.Context, f model.Filter) ([]model.State, error) {
	query, args := listStatesQuery(sqliteDialect, f)
	return sqliteList(ctx, s.db, "states", query, args, scanState)
}

func (s *SQLiteStore) ListLGAs(ctx context.Context, f model.Filter) ([]model.LocalGovernment, error) {
	query, args := listLGAsQuery(sqliteDialect, f)
	return sqliteList(ctx, s.db, "lgas", query, args, scanLGA)
}

func sqliteList[T any](ctx context.Context, db *sql.DB, what, query string, args []any, scan func(scannable) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s", what)
	}
	defer rows.Close() //nolint:errcheck

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", what)
		}
		out = append(out, v)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: iterate %s", what)
}

func (s *SQLiteStore) GetZone(ctx context.Context, name string) (*model.GeoPoliticalZone, error) {
	query, args := getZoneQuery(sqliteDialect, name)
	z, err := scanZone(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: zone %q", name)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get zone")
	}
	return &z, nil
}

func (s *SQLiteStore) GetState(ctx context.Context, name string) (*model.State, error) {
	query, args := getStateQuery(sqliteDialect, name)
	st, err := scanState(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: state %q", name)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get state")
	}
	return &st, nil
}

func (s *SQLiteStore) Counts(ctx context.Context) (model.Counts, error) {
	var c model.Counts
	err := s.db.QueryRowContext(ctx, selectCounts).Scan(&c.Zones, &c.States, &c.LGAs)
	return c, eris.Wrap(err, "sqlite: counts")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func newFixtureLoad(ds *fixture.Dataset, source string) *model.FixtureLoad {
	c := ds.Counts()
	return &model.FixtureLoad{
		ID:       uuid.NewString(),
		Source:   source,
		Zones:    c.Zones,
		States:   c.States,
		LGAs:     c.LGAs,
		LoadedAt: time.Now().UTC(),
	}
}
