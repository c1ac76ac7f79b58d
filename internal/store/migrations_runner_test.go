package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jw6ventures/dyncal/internal/calendar"
)

func migrationTx(sql, version string) *mockTx {
	return &mockTx{
		execs: []execExpectation{
			{expect: regexp.MustCompile("pg_advisory_xact_lock"), args: []any{migrationLockKey}},
			{expect: regexp.MustCompile(sql)},
			{expect: regexp.MustCompile("INSERT INTO schema_migrations"), args: []any{version}},
		},
		queries: []queryExpectation{
			{expect: regexp.MustCompile("schema_migrations WHERE version=\\$1"), args: []any{version}, value: false},
		},
	}
}

func TestApplyMigrationsEmptyDatabase(t *testing.T) {
	tx1 := migrationTx("-- Initial schema for dyncal availability sets", "001_init.sql")
	tx2 := migrationTx("-- Range lookups by day", "002_available_dates_index.sql")

	pool := &mockPool{
		t: t,
		queries: []queryExpectation{
			{expect: regexp.MustCompile("array_agg\\(version\\)"), value: []string{}},
			{expect: regexp.MustCompile("to_regclass"), value: false},
		},
		execs: []execExpectation{
			{expect: regexp.MustCompile("CREATE TABLE IF NOT EXISTS schema_migrations")},
		},
		txs: []*mockTx{tx1, tx2},
	}

	if err := ApplyMigrations(context.Background(), pool); err != nil {
		t.Fatalf("expected migrations to apply, got error: %v", err)
	}

	pool.assertDone()
	tx1.assertDone()
	tx2.assertDone()
	if !tx1.committed || !tx2.committed {
		t.Fatal("expected every migration to commit")
	}
}

func TestApplyMigrationsExistingSchemaWithoutTracking(t *testing.T) {
	tx2 := migrationTx("-- Range lookups by day", "002_available_dates_index.sql")

	pool := &mockPool{
		t: t,
		queries: []queryExpectation{
			{expect: regexp.MustCompile("array_agg\\(version\\)"), value: []string{}},
			{expect: regexp.MustCompile("to_regclass"), value: true},
		},
		execs: []execExpectation{
			{expect: regexp.MustCompile("CREATE TABLE IF NOT EXISTS schema_migrations")},
			{expect: regexp.MustCompile("INSERT INTO schema_migrations"), args: []any{"001_init.sql"}},
		},
		txs: []*mockTx{tx2},
	}

	if err := ApplyMigrations(context.Background(), pool); err != nil {
		t.Fatalf("expected migrations to apply without replaying init, got error: %v", err)
	}

	pool.assertDone()
	tx2.assertDone()
}

func TestApplyMigrationsAllAlreadyApplied(t *testing.T) {
	pool := &mockPool{
		t: t,
		queries: []queryExpectation{
			{expect: regexp.MustCompile("array_agg\\(version\\)"), value: []string{"001_init.sql", "002_available_dates_index.sql"}},
		},
		execs: []execExpectation{
			{expect: regexp.MustCompile("CREATE TABLE IF NOT EXISTS schema_migrations")},
		},
	}

	if err := ApplyMigrations(context.Background(), pool); err != nil {
		t.Fatalf("expected no-op migrations, got error: %v", err)
	}

	pool.assertDone()
}

func TestApplyMigrationsAppliedByOtherInstance(t *testing.T) {
	// The lock was held by a concurrent start that recorded 002 first.
	tx := &mockTx{
		execs: []execExpectation{
			{expect: regexp.MustCompile("pg_advisory_xact_lock"), args: []any{migrationLockKey}},
		},
		queries: []queryExpectation{
			{expect: regexp.MustCompile("schema_migrations WHERE version=\\$1"), args: []any{"002_available_dates_index.sql"}, value: true},
		},
	}
	pool := &mockPool{
		t: t,
		queries: []queryExpectation{
			{expect: regexp.MustCompile("array_agg\\(version\\)"), value: []string{"001_init.sql"}},
		},
		execs: []execExpectation{
			{expect: regexp.MustCompile("CREATE TABLE IF NOT EXISTS schema_migrations")},
		},
		txs: []*mockTx{tx},
	}

	if err := ApplyMigrations(context.Background(), pool); err != nil {
		t.Fatalf("ApplyMigrations() error: %v", err)
	}
	pool.assertDone()
	tx.assertDone()
}

func TestApplyMigrationsFailureRollsBack(t *testing.T) {
	boom := errors.New("syntax error")
	tx := &mockTx{
		execs: []execExpectation{
			{expect: regexp.MustCompile("pg_advisory_xact_lock")},
			{expect: regexp.MustCompile("-- Initial schema"), err: boom},
		},
		queries: []queryExpectation{
			{expect: regexp.MustCompile("schema_migrations WHERE version=\\$1"), value: false},
		},
	}
	pool := &mockPool{
		t: t,
		queries: []queryExpectation{
			{expect: regexp.MustCompile("array_agg\\(version\\)"), value: []string{}},
			{expect: regexp.MustCompile("to_regclass"), value: false},
		},
		execs: []execExpectation{
			{expect: regexp.MustCompile("CREATE TABLE IF NOT EXISTS schema_migrations")},
		},
		txs: []*mockTx{tx},
	}

	err := ApplyMigrations(context.Background(), pool)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped exec error, got %v", err)
	}
	if tx.committed || !tx.rolled {
		t.Fatal("expected failed migration to roll back")
	}
}

func TestMigrateNothingEmbedded(t *testing.T) {
	pool := &mockPool{t: t}
	if err := migrate(context.Background(), pool, nil); err != nil {
		t.Fatalf("migrate() error: %v", err)
	}
	pool.assertDone()
}

func TestListDatesUnknownSet(t *testing.T) {
	pool := &mockPool{
		t: t,
		queries: []queryExpectation{
			{expect: regexp.MustCompile("FROM availability_sets WHERE name=\\$1"), args: []any{"holidays"}, value: false},
		},
	}
	s := New(pool)

	_, err := s.Availability.ListDates(context.Background(), "holidays", calendar.NewDate(2024, 1, 1), calendar.NewDate(2024, 1, 31))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	pool.assertDone()
}

func TestReplaceSet(t *testing.T) {
	tx := &mockTx{execs: []execExpectation{
		{expect: regexp.MustCompile("INSERT INTO availability_sets"), args: []any{"clinic", "open days"}},
		{expect: regexp.MustCompile("DELETE FROM available_dates WHERE set_name=\\$1"), args: []any{"clinic"}},
		{expect: regexp.MustCompile("UNNEST"), args: []any{"clinic", nil}},
	}}
	pool := &mockPool{t: t, txs: []*mockTx{tx}}
	s := New(pool)

	err := s.Availability.ReplaceSet(context.Background(), AvailabilitySet{
		Name:        "clinic",
		Description: "open days",
		Dates:       []calendar.CalendarDate{calendar.NewDate(2024, 1, 10), calendar.NewDate(2024, 1, 12)},
	})
	if err != nil {
		t.Fatalf("ReplaceSet() error: %v", err)
	}
	if !tx.committed {
		t.Error("expected transaction to commit")
	}
	pool.assertDone()
	tx.assertDone()
}

func TestDeleteSet(t *testing.T) {
	pool := &mockPool{
		t: t,
		execs: []execExpectation{
			{expect: regexp.MustCompile("DELETE FROM availability_sets"), args: []any{"gone"}, tag: "DELETE 0"},
			{expect: regexp.MustCompile("DELETE FROM availability_sets"), args: []any{"clinic"}, tag: "DELETE 1"},
		},
	}
	s := New(pool)

	if err := s.Availability.DeleteSet(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing set, got %v", err)
	}
	if err := s.Availability.DeleteSet(context.Background(), "clinic"); err != nil {
		t.Fatalf("DeleteSet() error: %v", err)
	}
	pool.assertDone()
}

type queryExpectation struct {
	expect *regexp.Regexp
	args   []any
	value  any
	err    error
}

type execExpectation struct {
	expect *regexp.Regexp
	args   []any
	tag    string
	err    error
}

func (e execExpectation) commandTag() pgconn.CommandTag {
	if e.tag == "" {
		return pgconn.NewCommandTag("MOCK")
	}
	return pgconn.NewCommandTag(e.tag)
}

type mockPool struct {
	t       *testing.T
	queries []queryExpectation
	execs   []execExpectation
	txs     []*mockTx
	txIdx   int
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if len(m.queries) == 0 {
		m.t.Fatalf("unexpected query: %s", sql)
	}
	exp := m.queries[0]
	m.queries = m.queries[1:]
	if !exp.expect.MatchString(sql) {
		m.t.Fatalf("query mismatch: %s", sql)
	}
	assertArgs(m.t, exp.args, args)
	return mockRow{value: exp.value, err: exp.err}
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if len(m.execs) == 0 {
		m.t.Fatalf("unexpected exec: %s", sql)
	}
	exp := m.execs[0]
	m.execs = m.execs[1:]
	if !exp.expect.MatchString(sql) {
		m.t.Fatalf("exec mismatch: %s", sql)
	}
	assertArgs(m.t, exp.args, arguments)
	return exp.commandTag(), exp.err
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	m.t.Fatalf("unexpected query: %s", sql)
	return nil, nil
}

func (m *mockPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if m.txIdx >= len(m.txs) {
		m.t.Fatalf("unexpected begin tx (no more transactions)")
	}
	tx := m.txs[m.txIdx]
	m.txIdx++
	tx.started = true
	return tx, nil
}
func (m *mockPool) Ping(ctx context.Context) error { return nil }

func (m *mockPool) assertDone() {
	if len(m.queries) != 0 {
		m.t.Fatalf("pending queries: %v", m.queries)
	}
	if len(m.execs) != 0 {
		m.t.Fatalf("pending execs: %v", m.execs)
	}
	if m.txIdx != len(m.txs) {
		m.t.Fatalf("expected %d transactions, got %d", len(m.txs), m.txIdx)
	}
}

type mockRow struct {
	value any
	err   error
}

func (m mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) != 1 {
		return fmt.Errorf("unexpected dest count: %d", len(dest))
	}
	switch v := m.value.(type) {
	case bool:
		ptr, ok := dest[0].(*bool)
		if !ok {
			return fmt.Errorf("expected *bool destination")
		}
		*ptr = v
	case []string:
		ptr, ok := dest[0].(*[]string)
		if !ok {
			return fmt.Errorf("expected *[]string destination")
		}
		*ptr = v
	case int:
		ptr, ok := dest[0].(*int)
		if !ok {
			return fmt.Errorf("expected *int destination")
		}
		*ptr = v
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

type mockTx struct {
	execs     []execExpectation
	queries   []queryExpectation
	started   bool
	committed bool
	rolled    bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, fmt.Errorf("unexpected nested begin")
}
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	return nil
}
func (m *mockTx) Rollback(ctx context.Context) error {
	m.rolled = true
	return nil
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, fmt.Errorf("unexpected CopyFrom")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return emptyBatchResults{}
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, fmt.Errorf("unexpected Prepare")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if len(m.execs) == 0 {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected tx exec: %s", sql)
	}
	exp := m.execs[0]
	m.execs = m.execs[1:]
	if !exp.expect.MatchString(sql) {
		return pgconn.CommandTag{}, fmt.Errorf("exec mismatch: %s", sql)
	}
	if err := assertArgs(nil, exp.args, arguments); err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("MOCK"), exp.err
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected query")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if len(m.queries) == 0 {
		return mockRow{err: fmt.Errorf("unexpected queryrow: %s", sql)}
	}
	exp := m.queries[0]
	m.queries = m.queries[1:]
	if !exp.expect.MatchString(sql) {
		return mockRow{err: fmt.Errorf("queryrow mismatch: %s", sql)}
	}
	if err := assertArgs(nil, exp.args, args); err != nil {
		return mockRow{err: err}
	}
	return mockRow{value: exp.value, err: exp.err}
}
func (m *mockTx) Conn() *pgx.Conn { return nil }

func (m *mockTx) assertDone() {
	if len(m.execs) != 0 {
		panic(fmt.Sprintf("pending tx execs: %v", m.execs))
	}
	if len(m.queries) != 0 {
		panic(fmt.Sprintf("pending tx queries: %v", m.queries))
	}
	if !m.committed && !m.rolled {
		panic("transaction not finished")
	}
}

func assertArgs(t *testing.T, expected, actual []any) error {
	if len(expected) == 0 {
		return nil
	}
	if len(expected) != len(actual) {
		if t != nil {
			t.Fatalf("argument length mismatch: expected %d got %d", len(expected), len(actual))
		}
		return fmt.Errorf("argument length mismatch")
	}
	for i, exp := range expected {
		if exp == nil {
			continue
		}
		if exp != actual[i] {
			if t != nil {
				t.Fatalf("argument mismatch at %d: expected %v got %v", i, exp, actual[i])
			}
			return fmt.Errorf("argument mismatch")
		}
	}
	return nil
}

type emptyBatchResults struct{}

func (emptyBatchResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, fmt.Errorf("unexpected batch exec")
}
func (emptyBatchResults) Query() (pgx.Rows, error) { return nil, fmt.Errorf("unexpected batch query") }
func (emptyBatchResults) QueryRow() pgx.Row {
	return mockRow{err: fmt.Errorf("unexpected batch queryrow")}
}
func (emptyBatchResults) Close() error { return nil }
