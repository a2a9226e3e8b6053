package dbprobe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2" // registers the "clickhouse" driver
	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4/database"
	migrateclickhouse "github.com/golang-migrate/migrate/v4/database/clickhouse"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/dbcheck"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const migrationsTable = "schema_migrations"

// dialect holds the catalog queries of one database/sql engine. The
// indexed columns query takes the table name as its only argument.
//
// migrate opens a golang-migrate driver for reading the version table. It
// is nil where the driver would write on open (sqlite always runs CREATE
// ... IF NOT EXISTS for its version table and index); those engines read the
// table with versionQuery instead.
type dialect struct {
	driver       string
	tables       string
	columns      string
	versionQuery string
	migrate      func(db *sql.DB) (database.Driver, error)
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		tables: `SELECT name FROM sqlite_master WHERE type = 'table'`,
		columns: `SELECT DISTINCT ii.name FROM sqlite_master m, pragma_index_info(m.name) ii
			WHERE m.type = 'index' AND m.tbl_name = ?`,
		versionQuery: `SELECT version, dirty FROM ` + migrationsTable + ` LIMIT 1`,
	}
	mysqlDialect = dialect{
		driver: "mysql",
		tables: `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()`,
		columns: `SELECT DISTINCT column_name FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = ? AND index_name <> 'PRIMARY'`,
		migrate: func(db *sql.DB) (database.Driver, error) {
			return migratemysql.WithInstance(db, &migratemysql.Config{})
		},
	}
	clickhouseDialect = dialect{
		driver: "clickhouse",
		tables: `SELECT name FROM system.tables WHERE database = currentDatabase()`,
		columns: `SELECT DISTINCT expr FROM system.data_skipping_indices
			WHERE database = currentDatabase() AND table = ?`,
		migrate: func(db *sql.DB) (database.Driver, error) {
			return migrateclickhouse.WithInstance(db, &migrateclickhouse.Config{})
		},
	}
)

// sqlSession inspects engines reachable through database/sql.
type sqlSession struct {
	db      *sql.DB
	dsn     string
	dialect dialect
}

func openSQL(ctx context.Context, d dialect, dsn string) (*sqlSession, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", d.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", d.driver, err)
	}
	return &sqlSession{db: db, dsn: dsn, dialect: d}, nil
}

func openSQLite(ctx context.Context, dsn dbcheck.DSN) (domain.DatabaseSession, error) {
	// database/sql would silently create a missing file.
	if _, err := os.Stat(dsn.Path); err != nil {
		return nil, fmt.Errorf("sqlite database %s: %w", dsn.Path, err)
	}
	return openSQL(ctx, sqliteDialect, dsn.Path)
}

func openMySQL(ctx context.Context, dsn dbcheck.DSN) (domain.DatabaseSession, error) {
	return openSQL(ctx, mysqlDialect, mysqlDSN(dsn))
}

func openClickHouse(ctx context.Context, dsn dbcheck.DSN) (domain.DatabaseSession, error) {
	conn, err := driverURL(dsn, "clickhouse")
	if err != nil {
		return nil, err
	}
	return openSQL(ctx, clickhouseDialect, conn)
}

// mysqlDSN converts a URL-style connection string into the driver's format.
func mysqlDSN(dsn dbcheck.DSN) string {
	cfg := mysql.NewConfig()
	cfg.User = dsn.Username
	cfg.Passwd = dsn.Password
	cfg.Net = "tcp"
	port := dsn.Port
	if port == 0 {
		port = 3306
	}
	cfg.Addr = net.JoinHostPort(dsn.Host, strconv.Itoa(port))
	cfg.DBName = dsn.Database
	cfg.Timeout = 10 * time.Second
	for _, key := range []string{"tls", "ssl"} {
		switch v := dsn.Query.Get(key); v {
		case "true", "skip-verify", "preferred":
			cfg.TLSConfig = v
		}
	}
	return cfg.FormatDSN()
}

func (s *sqlSession) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlSession) Tables(ctx context.Context) ([]string, error) {
	return s.queryNames(ctx, s.dialect.tables)
}

func (s *sqlSession) IndexedColumns(ctx context.Context, table string) ([]string, error) {
	return s.queryNames(ctx, s.dialect.columns, table)
}

// Migration reads the golang-migrate version table when it exists. The
// migrate driver gets a separate connection pool because closing it closes
// its pool.
func (s *sqlSession) Migration(ctx context.Context) (domain.MigrationState, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return domain.MigrationState{}, err
	}
	if !hasVersionTable(tables) {
		return domain.MigrationState{}, nil
	}
	if s.dialect.migrate == nil {
		return s.readVersion(ctx)
	}

	db, err := sql.Open(s.dialect.driver, s.dsn)
	if err != nil {
		return domain.MigrationState{}, fmt.Errorf("opening migration connection: %w", err)
	}
	drv, err := s.dialect.migrate(db)
	if err != nil {
		_ = db.Close()
		return domain.MigrationState{}, fmt.Errorf("reading %s: %w", migrationsTable, err)
	}
	defer drv.Close()

	return migrationState(drv)
}

// readVersion reads the single golang-migrate row with a plain query.
func (s *sqlSession) readVersion(ctx context.Context) (domain.MigrationState, error) {
	var (
		version int64
		dirty   bool
	)
	err := s.db.QueryRowContext(ctx, s.dialect.versionQuery).Scan(&version, &dirty)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.MigrationState{}, nil
	case err != nil:
		return domain.MigrationState{}, fmt.Errorf("reading %s: %w", migrationsTable, err)
	}
	return stateOf(version, dirty)
}

func (s *sqlSession) Close() error {
	return s.db.Close()
}

func (s *sqlSession) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func migrationState(drv database.Driver) (domain.MigrationState, error) {
	version, dirty, err := drv.Version()
	if err != nil {
		return domain.MigrationState{}, fmt.Errorf("reading migration version: %w", err)
	}
	return stateOf(int64(version), dirty)
}

func stateOf(version int64, dirty bool) (domain.MigrationState, error) {
	if version == int64(database.NilVersion) {
		return domain.MigrationState{}, nil
	}
	if version < 0 {
		return domain.MigrationState{}, errors.New("negative migration version")
	}
	return domain.MigrationState{Known: true, Version: uint(version), Dirty: dirty}, nil
}
