package store

import (
	"fmt"
	"strings"

	"github.com/sells-group/nigerian-states/internal/model"
)

// dialect captures the SQL differences between the two drivers.
type dialect struct {
	name        string
	placeholder func(n int) string
	// noLimit is the LIMIT value meaning "all rows", needed when only an
	// offset is given.
	noLimit string
}

var (
	sqliteDialect = dialect{
		name:        "sqlite",
		placeholder: func(int) string { return "?" },
		noLimit:     "-1",
	}
	postgresDialect = dialect{
		name:        "postgres",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		noLimit:     "ALL",
	}
)

const (
	selectZones = `SELECT z.id, z.name FROM geopolitical_zones z`
	selectState = `SELECT s.id, s.name, s.capital, s.zone_id, z.name FROM states s ` +
		`JOIN geopolitical_zones z ON z.id = s.zone_id`
	selectLGAs = `SELECT l.id, l.name, l.state_id, s.name FROM local_governments l ` +
		`JOIN states s ON s.id = l.state_id ` +
		`JOIN geopolitical_zones z ON z.id = s.zone_id`
	selectCounts = `SELECT ` +
		`(SELECT count(*) FROM geopolitical_zones), ` +
		`(SELECT count(*) FROM states), ` +
		`(SELECT count(*) FROM local_governments)`
)

// queryBuilder accumulates WHERE conditions and their positional args.
type queryBuilder struct {
	d     dialect
	where []string
	args  []any
}

func (q *queryBuilder) arg(v any) string {
	q.args = append(q.args, v)
	return q.d.placeholder(len(q.args))
}

func (q *queryBuilder) eq(col string, v any) {
	q.where = append(q.where, col+" = "+q.arg(v))
}

func (q *queryBuilder) in(col string, vals []string) {
	if len(vals) == 0 {
		return
	}
	ph := make([]string, len(vals))
	for i, v := range vals {
		ph[i] = q.arg(v)
	}
	q.where = append(q.where, col+" IN ("+strings.Join(ph, ", ")+")")
}

func (q *queryBuilder) build(base, orderBy string, f model.Filter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(base)
	if len(q.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy)
	switch {
	case f.Limit > 0:
		fmt.Fprintf(&sb, " LIMIT %d", f.Limit)
		if f.Offset > 0 {
			fmt.Fprintf(&sb, " OFFSET %d", f.Offset)
		}
	case f.Offset > 0:
		fmt.Fprintf(&sb, " LIMIT %s OFFSET %d", q.d.noLimit, f.Offset)
	}
	return sb.String(), q.args
}

func listZonesQuery(d dialect, f model.Filter) (string, []any) {
	q := &queryBuilder{d: d}
	q.in("z.name", f.Zones)
	return q.build(selectZones, "z.id", f)
}

func listStatesQuery(d dialect, f model.Filter) (string, []any) {
	q := &queryBuilder{d: d}
	q.in("z.name", f.Zones)
	return q.build(selectState, "s.id", f)
}

func listLGAsQuery(d dialect, f model.Filter) (string, []any) {
	q := &queryBuilder{d: d}
	if f.State != "" {
		q.eq("s.name", f.State)
	}
	q.in("z.name", f.Zones)
	return q.build(selectLGAs, "l.id", f)
}

func getZoneQuery(d dialect, name string) (string, []any) {
	return selectZones + " WHERE z.name = " + d.placeholder(1), []any{name}
}

func getStateQuery(d dialect, name string) (string, []any) {
	return selectState + " WHERE s.name = " + d.placeholder(1), []any{name}
}

func listFixtureLoadsQuery(d dialect, limit int) (string, []any) {
	if limit <= 0 {
		limit = 20
	}
	return `SELECT CAST(id AS TEXT), source, zones, states, lgas, loaded_at FROM fixture_loads ` +
		`ORDER BY loaded_at DESC LIMIT ` + d.placeholder(1), []any{limit}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanZone(row scannable) (model.GeoPoliticalZone, error) {
	var z model.GeoPoliticalZone
	err := row.Scan(&z.ID, &z.Name)
	return z, err
}

func scanState(row scannable) (model.State, error) {
	var s model.State
	err := row.Scan(&s.ID, &s.Name, &s.Capital, &s.ZoneID, &s.Zone)
	return s, err
}

func scanLGA(row scannable) (model.LocalGovernment, error) {
	var l model.LocalGovernment
	err := row.Scan(&l.ID, &l.Name, &l.StateID, &l.State)
	return l, err
}
