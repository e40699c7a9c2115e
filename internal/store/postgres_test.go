package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nigerian-states/internal/fixture"
	"github.com/sells-group/nigerian-states/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_Migrate_AppliesPending(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT filename FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"filename"}).AddRow("001_reference_tables.sql"))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS fixture_loads`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs("002_fixture_loads.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate_LockIsTransactionScoped(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// The lock and every statement run on the migration tx; no session-level
	// unlock is issued through the pool afterwards.
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT filename FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"filename"}).
			AddRow("001_reference_tables.sql").AddRow("002_fixture_loads.sql"))
	mock.ExpectCommit()

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate_FailureRollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure migration table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate_BeginFails(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin migration tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ready(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{"all tables", 3, true},
		{"missing tables", 1, false},
		{"fresh database", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockPostgresStore(t)
			mock.ExpectQuery(`SELECT count\(\*\) FROM information_schema.tables`).
				WithArgs(referenceTables).
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(tt.count))

			ready, err := s.Ready(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ready)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func expectUpsert(mock pgxmock.PgxPoolIface, cfg dbUpsert, n int64) {
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_` + cfg.table + `"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_" + cfg.table}, cfg.columns).WillReturnResult(n)
	mock.ExpectExec(`INSERT INTO "` + cfg.table + `" .* ON CONFLICT \("id"\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", n))
}

type dbUpsert struct {
	table   string
	columns []string
}

func TestPostgresStore_LoadFixture(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ds, err := fixture.Default()
	require.NoError(t, err)

	mock.ExpectBegin()
	expectUpsert(mock, dbUpsert{zoneUpsert.Table, zoneUpsert.Columns}, 6)
	expectUpsert(mock, dbUpsert{stateUpsert.Table, stateUpsert.Columns}, 37)
	expectUpsert(mock, dbUpsert{lgaUpsert.Table, lgaUpsert.Columns}, 774)
	mock.ExpectExec(`INSERT INTO fixture_loads`).
		WithArgs(pgxmock.AnyArg(), "embedded:fixtures.json", 6, 37, 774, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	load, err := s.LoadFixture(context.Background(), ds, fixture.EmbeddedSource)
	require.NoError(t, err)
	assert.Len(t, load.ID, 36)
	assert.Equal(t, 774, load.LGAs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadFixture_RollsBackOnFailure(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ds, err := fixture.Default()
	require.NoError(t, err)

	mock.ExpectBegin()
	expectUpsert(mock, dbUpsert{zoneUpsert.Table, zoneUpsert.Columns}, 6)
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_states"`).
		WillReturnError(errors.New("relation \"states\" does not exist"))
	mock.ExpectRollback()

	_, err = s.LoadFixture(context.Background(), ds, fixture.EmbeddedSource)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: load fixture")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListStates_ZoneFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE z.name IN ($1, $2) ORDER BY s.id LIMIT 2`)).
		WithArgs("North Central", "North West").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capital", "zone_id", "zone"}).
			AddRow(7, "Benue", "Makurdi", 1, "North Central").
			AddRow(18, "Kaduna", "Kaduna", 3, "North West"))

	states, err := s.ListStates(context.Background(), model.Filter{Zones: []string{"North Central", "North West"}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, model.State{ID: 7, Name: "Benue", Capital: "Makurdi", ZoneID: 1, Zone: "North Central"}, states[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListLGAs_StateFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.name = $1 ORDER BY l.id`)).
		WithArgs("Lagos").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "state_id", "state"}).
			AddRow(460, "Agege", 25, "Lagos"))

	lgas, err := s.ListLGAs(context.Background(), model.Filter{State: "Lagos"})
	require.NoError(t, err)
	require.Len(t, lgas, 1)
	assert.Equal(t, "Lagos: Agege", lgas[0].String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListZones_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT z.id, z.name FROM geopolitical_zones z`).
		WillReturnError(errors.New("relation \"geopolitical_zones\" does not exist"))

	_, err := s.ListZones(context.Background(), model.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: list zones")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetState(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.name = $1`)).
		WithArgs("Oyo").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capital", "zone_id", "zone"}).
			AddRow(31, "Oyo", "Ibadan", 6, "South West"))

	st, err := s.GetState(context.Background(), "Oyo")
	require.NoError(t, err)
	assert.Equal(t, "Ibadan", st.Capital)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetState_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.name = $1`)).
		WithArgs("Togo").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetState(context.Background(), "Togo")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetZone_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE z.name = $1`)).
		WithArgs("Middle Belt").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetZone(context.Background(), "Middle Belt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Counts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT \(SELECT count\(\*\) FROM geopolitical_zones\)`).
		WillReturnRows(pgxmock.NewRows([]string{"zones", "states", "lgas"}).AddRow(6, 37, 774))

	c, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Counts{Zones: 6, States: 37, LGAs: 774}, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListFixtureLoads(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	loadedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM fixture_loads ORDER BY loaded_at DESC LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "zones", "states", "lgas", "loaded_at"}).
			AddRow("0b6f4c1e-5d7a-4f7e-9c55-3b1fd6a0c2aa", "embedded:fixtures.json", 6, 37, 774, loadedAt))

	loads, err := s.ListFixtureLoads(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, loadedAt, loads[0].LoadedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectPing()

	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CloseWithoutOwnedPool(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	assert.NoError(t, s.Close())
}
