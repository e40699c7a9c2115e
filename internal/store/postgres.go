package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nigerian-states/internal/db"
	"github.com/sells-group/nigerian-states/internal/fixture"
	"github.com/sells-group/nigerian-states/internal/model"
)

// migrationLockID serializes concurrent Migrate calls across processes.
const migrationLockID = 7740037

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
}

var (
	zoneUpsert = db.UpsertConfig{
		Table:        "geopolitical_zones",
		Columns:      []string{"id", "name"},
		ConflictKeys: []string{"id"},
	}
	stateUpsert = db.UpsertConfig{
		Table:        "states",
		Columns:      []string{"id", "name", "capital", "zone_id"},
		ConflictKeys: []string{"id"},
	}
	lgaUpsert = db.UpsertConfig{
		Table:        "local_governments",
		Columns:      []string{"id", "name", "state_id"},
		ConflictKeys: []string{"id"},
	}
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 5
	if poolCfg != nil && poolCfg.MaxConns > 0 {
		pgxCfg.MaxConns = poolCfg.MaxConns
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; the caller keeps ownership.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies pending migrations in one transaction. The transaction-level
// advisory lock serializes overlapping deploys and is released on commit or
// rollback, so it never outlives the connection that took it.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "store.postgres"))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin migration tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
		return eris.Wrap(err, "postgres: acquire migration lock")
	}

	if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return eris.Wrap(err, "postgres: ensure migration table")
	}

	applied, err := appliedMigrations(ctx, tx)
	if err != nil {
		return err
	}

	files, err := migrations(postgresDialect.name)
	if err != nil {
		return err
	}
	for _, m := range files {
		if applied[m.name] {
			continue
		}
		log.Info("applying migration", zap.String("file", m.name))

		if _, err := tx.Exec(ctx, m.sql); err != nil {
			return eris.Wrapf(err, "postgres: apply migration %s", m.name)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (filename, applied_at) VALUES ($1, now())", m.name,
		); err != nil {
			return eris.Wrapf(err, "postgres: record migration %s", m.name)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit migrations")
}

func appliedMigrations(ctx context.Context, tx pgx.Tx) (map[string]bool, error) {
	rows, err := tx.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query applied migrations")
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan migration row")
		}
		applied[name] = true
	}
	return applied, eris.Wrap(rows.Err(), "postgres: iterate applied migrations")
}

// Ready reports whether every reference table exists in the current schema.
func (s *PostgresStore) Ready(ctx context.Context) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_schema = current_schema() AND table_name = ANY($1)`,
		referenceTables,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "postgres: ready")
	}
	return n == len(referenceTables), nil
}

// LoadFixture stages each table through COPY and upserts it by primary key,
// all in one transaction, then records the load.
func (s *PostgresStore) LoadFixture(ctx context.Context, ds *fixture.Dataset, source string) (*model.FixtureLoad, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load fixture: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	steps := []struct {
		cfg  db.UpsertConfig
		rows [][]any
	}{
		{zoneUpsert, zoneRows(ds.Zones)},
		{stateUpsert, stateRows(ds.States)},
		{lgaUpsert, lgaRows(ds.LGAs)},
	}
	for _, step := range steps {
		if _, err := db.UpsertTx(ctx, tx, step.cfg, step.rows); err != nil {
			return nil, eris.Wrap(err, "postgres: load fixture")
		}
	}

	load := newFixtureLoad(ds, source)
	if _, err := tx.Exec(ctx,
		`INSERT INTO fixture_loads (id, source, zones, states, lgas, loaded_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		load.ID, load.Source, load.Zones, load.States, load.LGAs, load.LoadedAt,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: load fixture: record load")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: load fixture: commit")
	}
	return load, nil
}

func zoneRows(zones []model.GeoPoliticalZone) [][]any {
	rows := make([][]any, len(zones))
	for i, z := range zones {
		rows[i] = []any{z.ID, z.Name}
	}
	return rows
}

func stateRows(states []model.State) [][]any {
	rows := make([][]any, len(states))
	for i, s := range states {
		rows[i] = []any{s.ID, s.Name, s.Capital, s.ZoneID}
	}
	return rows
}

func lgaRows(lgas []model.LocalGovernment) [][]any {
	rows := make([][]any, len(lgas))
	for i, l := range lgas {
		rows[i] = []any{l.ID, l.Name, l.StateID}
	}
	return rows
}

// ListFixtureLoads returns the most recent loads first.
func (s *PostgresStore) ListFixtureLoads(ctx context.Context, limit int) ([]model.FixtureLoad, error) {
	query, args := listFixtureLoadsQuery(postgresDialect, limit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list fixture loads")
	}
	defer rows.Close()

	var loads []model.FixtureLoad
	for rows.Next() {
		var l model.FixtureLoad
		if err := rows.Scan(&l.ID, &l.Source, &l.Zones, &l.States, &l.LGAs, &l.LoadedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan fixture load")
		}
		loads = append(loads, l)
	}
	return loads, eris.Wrap(rows.Err(), "postgres: iterate fixture loads")
}

func (s *PostgresStore) ListZones(ctx context.Context, f model.Filter) ([]model.GeoPoliticalZone, error) {
	query, args := listZonesQuery(postgresDialect, f)
	return pgList(ctx, s.pool, "zones", query, args, scanZone)
}

func (s *PostgresStore) ListStates(ctx context.Context, f model.Filter) ([]model.State, error) {
	query, args := listStatesQuery(postgresDialect, f)
	return pgList(ctx, s.pool, "states", query, args, scanState)
}

func (s *PostgresStore) ListLGAs(ctx context.Context, f model.Filter) ([]model.LocalGovernment, error) {
	query, args := listLGAsQuery(postgresDialect, f)
	return pgList(ctx, s.pool, "lgas", query, args, scanLGA)
}

func pgList[T any](ctx context.Context, pool db.Pool, what, query string, args []any, scan func(scannable) (T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list %s", what)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", what)
		}
		out = append(out, v)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: iterate %s", what)
}

func (s *PostgresStore) GetZone(ctx context.Context, name string) (*model.GeoPoliticalZone, error) {
	query, args := getZoneQuery(postgresDialect, name)
	z, err := scanZone(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: zone %q", name)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get zone")
	}
	return &z, nil
}

func (s *PostgresStore) GetState(ctx context.Context, name string) (*model.State, error) {
	query, args := getStateQuery(postgresDialect, name)
	st, err := scanState(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: state %q", name)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get state")
	}
	return &st, nil
}

func (s *PostgresStore) Counts(ctx context.Context) (model.Counts, error) {
	var c model.Counts
	err := s.pool.QueryRow(ctx, selectCounts).Scan(&c.Zones, &c.States, &c.LGAs)
	return c, eris.Wrap(err, "postgres: counts")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
