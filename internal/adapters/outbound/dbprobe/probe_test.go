package dbprobe_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/dbprobe"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/dbcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func sqliteDB(t *testing.T, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
	return path
}

func parse(t *testing.T, raw string) dbcheck.DSN {
	t.Helper()
	d, err := dbcheck.Parse(raw)
	require.NoError(t, err)
	return d
}

func TestProbe_Supports(t *testing.T) {
	p := dbprobe.New()
	for _, e := range []string{"postgresql", "mysql", "sqlite", "clickhouse", "redis"} {
		assert.True(t, p.Supports(e), e)
	}
	assert.False(t, p.Supports("oracle"))
}

func TestProbe_UnsupportedEngine(t *testing.T) {
	_, err := dbprobe.New().Open(context.Background(), dbcheck.DSN{Type: "oracle"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedEngine)
}

func TestSQLite_TablesAndIndexes(t *testing.T) {
	path := sqliteDB(t,
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, email TEXT UNIQUE)`,
		`CREATE INDEX idx_customers_email ON customers (email)`,
		`CREATE TABLE integrations (id INTEGER PRIMARY KEY)`,
	)
	ctx := context.Background()

	s, err := dbprobe.New().Open(ctx, parse(t, "sqlite:///"+path))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"customers", "integrations"}, tables)

	cols, err := s.IndexedColumns(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, cols)

	state, err := s.Migration(ctx)
	require.NoError(t, err)
	assert.False(t, state.Known)
}

func TestSQLite_MigrationVersion(t *testing.T) {
	path := sqliteDB(t,
		`CREATE TABLE schema_migrations (version uint64, dirty bool)`,
		`INSERT INTO schema_migrations (version, dirty) VALUES (7, 1)`,
	)
	ctx := context.Background()

	s, err := dbprobe.New().Open(ctx, parse(t, "sqlite:///"+path))
	require.NoError(t, err)
	defer s.Close()

	state, err := s.Migration(ctx)
	require.NoError(t, err)
	assert.True(t, state.Known)
	assert.Equal(t, uint(7), state.Version)
	assert.True(t, state.Dirty)

	// The session stays usable after the migration check.
	require.NoError(t, s.Ping(ctx))
}

func TestSQLite_IndexedColumnsSpanEveryIndex(t *testing.T) {
	path := sqliteDB(t,
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, region TEXT, tenant TEXT)`,
		`CREATE INDEX idx_customers_name ON customers (name)`,
		`CREATE INDEX idx_customers_region_tenant ON customers (region, tenant)`,
	)
	ctx := context.Background()

	s, err := dbprobe.New().Open(ctx, parse(t, "sqlite:///"+path))
	require.NoError(t, err)
	defer s.Close()

	cols, err := s.IndexedColumns(ctx, "customers")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"name", "region", "tenant"}, cols)
}

func TestSQLite_MigrationLeavesCatalogUntouched(t *testing.T) {
	path := sqliteDB(t,
		`CREATE TABLE schema_migrations (version uint64, dirty bool)`,
		`INSERT INTO schema_migrations (version, dirty) VALUES (3, 0)`,
	)
	before := catalog(t, path)
	ctx := context.Background()

	s, err := dbprobe.New().Open(ctx, parse(t, "sqlite:///"+path))
	require.NoError(t, err)
	state, err := s.Migration(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Equal(t, domain.MigrationState{Known: true, Version: 3}, state)
	assert.Equal(t, before, catalog(t, path))
}

func TestSQLite_EmptyMigrationTable(t *testing.T) {
	path := sqliteDB(t, `CREATE TABLE schema_migrations (version uint64, dirty bool)`)
	ctx := context.Background()

	s, err := dbprobe.New().Open(ctx, parse(t, "sqlite:///"+path))
	require.NoError(t, err)
	defer s.Close()

	state, err := s.Migration(ctx)
	require.NoError(t, err)
	assert.False(t, state.Known)
}

// catalog lists every schema object of the sqlite file at path.
func catalog(t *testing.T, path string) []string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT type || ':' || name FROM sqlite_master ORDER BY type, name`)
	require.NoError(t, err)
	defer rows.Close()

	var objects []string
	for rows.Next() {
		var o string
		require.NoError(t, rows.Scan(&o))
		objects = append(objects, o)
	}
	require.NoError(t, rows.Err())
	return objects
}

func TestSQLite_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := dbprobe.New().Open(context.Background(), parse(t, "sqlite:///"+path))
	assert.Error(t, err)
}

func TestRedis_PingOnly(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := dbprobe.New().Open(ctx, parse(t, "redis://"+mr.Addr()+"/0?pool_size=10"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))
	_, err = s.Tables(ctx)
	assert.ErrorIs(t, err, domain.ErrNotApplicable)
	_, err = s.Migration(ctx)
	assert.ErrorIs(t, err, domain.ErrNotApplicable)
}

func TestRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := dbprobe.New().Open(context.Background(), parse(t, "redis://"+addr))
	assert.Error(t, err)
}
