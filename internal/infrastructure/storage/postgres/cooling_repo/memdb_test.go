package cooling_repo

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"coolstore/internal/domain/cooling"
	"coolstore/internal/infrastructure/storage/postgres"
)

// memDB is an in-memory stand-in for the inventory tables. It understands
// exactly the statements SampleRepo builds and snapshots its state on
// RunInTransaction so rollbacks are observable.
type memDB struct {
	kinds   map[int]cooling.SampleKind
	samples map[int]cooling.Sample
	trays   map[int]bool
	places  []cooling.Place
	audit   [][]any

	// failOn injects an error for statements starting with the key.
	failOn map[string]error
	// rowsErrOn injects an error after all rows of a query were read.
	rowsErrOn map[string]error
	// beforeExec runs before statements starting with the key.
	beforeExec map[string]func(m *memDB)

	statements []string
	commits    int
	rollbacks  int
}

type memTxKey struct{}

var _ DB = (*memDB)(nil)

func newMemDB() *memDB {
	return &memDB{
		kinds:      map[int]cooling.SampleKind{},
		samples:    map[int]cooling.Sample{},
		trays:      map[int]bool{},
		failOn:     map[string]error{},
		rowsErrOn:  map[string]error{},
		beforeExec: map[string]func(m *memDB){},
	}
}

func (m *memDB) addKind(id int, text string, days int) *memDB {
	m.kinds[id] = cooling.SampleKind{ID: id, Text: text, ValidNoOfDays: days}
	return m
}

func (m *memDB) addSample(id, kindID int, exp time.Time) *memDB {
	m.samples[id] = cooling.Sample{ID: id, SampleKindID: kindID, ExpirationDate: exp}
	return m
}

func (m *memDB) addTray(id int) *memDB {
	m.trays[id] = true
	return m
}

func (m *memDB) place(trayID, placeNo, sampleID int) *memDB {
	m.places = append(m.places, cooling.Place{TrayID: trayID, PlaceNo: placeNo, SampleID: sampleID})
	return m
}

func (m *memDB) placesOf(trayID int) []cooling.Place {
	var out []cooling.Place
	for _, p := range m.places {
		if p.TrayID == trayID {
			out = append(out, p)
		}
	}
	return out
}

type memSnapshot struct {
	samples map[int]cooling.Sample
	places  []cooling.Place
	audit   [][]any
}

func (m *memDB) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	snap := memSnapshot{
		samples: maps.Clone(m.samples),
		places:  slices.Clone(m.places),
		audit:   slices.Clone(m.audit),
	}
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.samples, m.places, m.audit = snap.samples, snap.places, snap.audit
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memDB) GetQuerier(ctx context.Context) postgres.Querier {
	return m
}

func (m *memDB) injected(sql string) error {
	for prefix, err := range m.failOn {
		if strings.HasPrefix(sql, prefix) {
			return err
		}
	}
	return nil
}

func (m *memDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	m.statements = append(m.statements, sql)
	if err := m.injected(sql); err != nil {
		return nil, err
	}

	rows, err := m.query(sql, args)
	if err != nil {
		return nil, err
	}
	for prefix, rowsErr := range m.rowsErrOn {
		if strings.HasPrefix(sql, prefix) {
			rows.err = rowsErr
		}
	}
	return rows, nil
}

func (m *memDB) query(sql string, args []any) (*memRows, error) {
	switch {
	case sql == "SELECT text FROM samplekind":
		rows := &memRows{cols: []string{"text"}}
		for _, k := range m.kinds {
			rows.data = append(rows.data, []any{k.Text})
		}
		return rows, nil

	case sql == "SELECT validnoofdays FROM samplekind WHERE samplekindid = $1":
		rows := &memRows{cols: []string{"validnoofdays"}}
		if k, ok := m.kinds[args[0].(int)]; ok {
			rows.data = append(rows.data, []any{k.ValidNoOfDays})
		}
		return rows, nil

	case sql == "SELECT 1 FROM sample WHERE sampleid = $1 LIMIT 1":
		rows := &memRows{cols: []string{"?column?"}}
		if _, ok := m.samples[args[0].(int)]; ok {
			rows.data = append(rows.data, []any{1})
		}
		return rows, nil

	case sql == "SELECT sampleid, samplekindid, expirationdate FROM sample WHERE sampleid = $1 LIMIT 1":
		rows := &memRows{cols: []string{"sampleid", "samplekindid", "expirationdate"}}
		if s, ok := m.samples[args[0].(int)]; ok {
			rows.data = append(rows.data, []any{s.ID, s.SampleKindID, s.ExpirationDate})
		}
		return rows, nil

	case sql == "SELECT 1 FROM tray WHERE trayid = $1 LIMIT 1":
		rows := &memRows{cols: []string{"?column?"}}
		if m.trays[args[0].(int)] {
			rows.data = append(rows.data, []any{1})
		}
		return rows, nil

	case sql == "SELECT DISTINCT sampleid FROM place WHERE trayid = $1 ORDER BY sampleid":
		seen := map[int]bool{}
		var ids []int
		for _, p := range m.placesOf(args[0].(int)) {
			if !seen[p.SampleID] {
				seen[p.SampleID] = true
				ids = append(ids, p.SampleID)
			}
		}
		slices.Sort(ids)
		rows := &memRows{cols: []string{"sampleid"}}
		for _, id := range ids {
			rows.data = append(rows.data, []any{id})
		}
		return rows, nil
	}
	return nil, fmt.Errorf("memdb: unexpected query %q", sql)
}

func (m *memDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	rows, err := m.Query(ctx, sql, args...)
	r, _ := rows.(*memRows)
	return &memRow{rows: r, err: err}
}

func (m *memDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.statements = append(m.statements, sql)
	for prefix, hook := range m.beforeExec {
		if strings.HasPrefix(sql, prefix) {
			hook(m)
		}
	}
	if err := m.injected(sql); err != nil {
		return pgconn.CommandTag{}, err
	}

	switch {
	case sql == "INSERT INTO sample (sampleid,samplekindid,expirationdate) VALUES ($1,$2,$3)":
		id, kindID := args[0].(int), args[1].(int)
		if _, ok := m.samples[id]; ok {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505", ConstraintName: "sample_pkey"}
		}
		if _, ok := m.kinds[kindID]; !ok {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23503", ConstraintName: "sample_samplekindid_fkey"}
		}
		m.samples[id] = cooling.Sample{ID: id, SampleKindID: kindID, ExpirationDate: args[2].(time.Time)}
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case sql == "DELETE FROM place WHERE trayid = $1":
		trayID := args[0].(int)
		before := len(m.places)
		m.places = slices.DeleteFunc(m.places, func(p cooling.Place) bool { return p.TrayID == trayID })
		return pgconn.NewCommandTag(fmt.Sprintf("DELETE %d", before-len(m.places))), nil

	case sql == "DELETE FROM sample WHERE sampleid = $1":
		id := args[0].(int)
		if slices.ContainsFunc(m.places, func(p cooling.Place) bool { return p.SampleID == id }) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23503", ConstraintName: "place_sampleid_fkey"}
		}
		if _, ok := m.samples[id]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(m.samples, id)
		return pgconn.NewCommandTag("DELETE 1"), nil

	case strings.HasPrefix(sql, "INSERT INTO sys_audit "):
		m.audit = append(m.audit, args)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("memdb: unexpected statement %q", sql)
}

// memRows implements pgx.Rows over literal values.
type memRows struct {
	cols []string
	data [][]any
	pos  int
	err  error
}

func (r *memRows) Close() {}

func (r *memRows) Err() error {
	if r.pos > len(r.data) {
		return r.err
	}
	return nil
}

func (r *memRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.data)))
}

func (r *memRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *memRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *memRows) Scan(dest ...any) error {
	if r.pos < 1 || r.pos > len(r.data) {
		return fmt.Errorf("memdb: scan outside of row")
	}
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("memdb: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		target.Set(reflect.ValueOf(row[i]).Convert(target.Type()))
	}
	return nil
}

func (r *memRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func (r *memRows) RawValues() [][]byte { return nil }

func (r *memRows) Conn() *pgx.Conn { return nil }

type memRow struct {
	rows *memRows
	err  error
}

func (r *memRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return pgx.ErrNoRows
	}
	return r.rows.Scan(dest...)
}
