package dbprobe

import (
	"context"
	"fmt"

	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/dbcheck"
)

type pgSession struct {
	conn *pgx.Conn
}

func openPostgres(ctx context.Context, dsn dbcheck.DSN) (domain.DatabaseSession, error) {
	connString, err := driverURL(dsn, "postgres")
	if err != nil {
		return nil, err
	}
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &pgSession{conn: conn}, nil
}

func (s *pgSession) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *pgSession) Tables(ctx context.Context) ([]string, error) {
	return s.names(ctx, `SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'`)
}

// IndexedColumns lists the columns covered by any index except the primary key.
func (s *pgSession) IndexedColumns(ctx context.Context, table string) ([]string, error) {
	return s.names(ctx, `SELECT DISTINCT a.attname::text FROM pg_index i
		JOIN pg_class t ON t.oid = i.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(i.indkey)
		WHERE n.nspname = current_schema() AND t.relname = $1 AND NOT i.indisprimary`, table)
}

// Migration reads schema_migrations through the golang-migrate driver. The
// driver only creates its version table when the table is missing, and it is
// not called in that case.
func (s *pgSession) Migration(ctx context.Context) (domain.MigrationState, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return domain.MigrationState{}, err
	}
	if !hasVersionTable(tables) {
		return domain.MigrationState{}, nil
	}

	db := stdlib.OpenDB(*s.conn.Config())
	drv, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return domain.MigrationState{}, fmt.Errorf("reading %s: %w", migrationsTable, err)
	}
	defer drv.Close()

	return migrationState(drv)
}

func (s *pgSession) Close() error {
	return s.conn.Close(context.Background())
}

func (s *pgSession) names(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning catalog rows: %w", err)
	}
	return names, nil
}
