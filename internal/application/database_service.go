package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/dbcheck"
	"github.com/openkraft/prodcheck/internal/logging"
)

// DatabaseConnectTimeout bounds opening the session and the first query.
const DatabaseConnectTimeout = 10 * time.Second

// DatabaseService validates connectivity, schema and connection settings.
type DatabaseService struct {
	probe domain.DatabaseProbe
}

func NewDatabaseService(probe domain.DatabaseProbe) *DatabaseService {
	return &DatabaseService{probe: probe}
}

func (s *DatabaseService) Check(ctx context.Context, cfg domain.ValidationConfig) domain.SectionResult {
	return domain.NewSection(domain.SectionDatabase, s.Validate(ctx, cfg.DBConnectionString), nil)
}

// Validate runs the database checks in order, stopping after a malformed
// connection string or a failed connection.
func (s *DatabaseService) Validate(ctx context.Context, connString string) []domain.CheckResult {
	log := logging.For("database")

	dsn, err := dbcheck.Parse(connString)
	if err != nil {
		return []domain.CheckResult{
			domain.Fail(domain.CheckDBConnString, "Connection string validation", "Invalid connection string: %v", err),
		}
	}
	log = log.WithField("engine", dsn.Type)

	results := []domain.CheckResult{
		domain.Pass(domain.CheckDBConnString, "Connection string validation", "Connection string is valid for %s database", dsn.Type),
	}

	if dsn.Type == dbcheck.EngineSQLite {
		results = append(results, domain.Warn(domain.CheckDBProduction, "Production database check", "SQLite is not recommended for production use"))
	} else {
		results = append(results, domain.Pass(domain.CheckDBProduction, "Production database check", "Production-ready database engine in use"))
	}

	if !s.probe.Supports(dsn.Type) {
		return append(results, domain.Fail(domain.CheckDBConnection, "Database connection", "Connection failed: Unsupported database type: %s", dsn.Type))
	}

	connectCtx, cancel := context.WithTimeout(ctx, DatabaseConnectTimeout)
	defer cancel()

	start := time.Now()
	session, err := s.probe.Open(connectCtx, dsn)
	if err == nil {
		err = session.Ping(connectCtx)
		if err != nil {
			_ = session.Close()
		}
	}
	if err != nil {
		log.WithError(err).Warn("database connection failed")
		return append(results, domain.Fail(domain.CheckDBConnection, "Database connection", "Connection failed: %v", err))
	}
	defer session.Close()

	elapsed := float64(time.Since(start).Microseconds()) / 1000
	results = append(results, domain.Pass(domain.CheckDBConnection, "Database connection", "Connected successfully (Response time: %.2fms)", elapsed))

	results = append(results, s.inspectSchema(ctx, session, dsn)...)

	if dbcheck.HasPooling(dsn) {
		results = append(results, domain.Pass(domain.CheckDBPooling, "Connection pooling configuration", "Connection pooling is properly configured"))
	} else {
		results = append(results, domain.Warn(domain.CheckDBPooling, "Connection pooling configuration", "Connection pooling not detected (recommended for production)"))
	}

	if dbcheck.HasEncryption(dsn) {
		results = append(results, domain.Pass(domain.CheckDBEncryption, "Database encryption", "Database encryption is configured"))
	} else {
		results = append(results, domain.Warn(domain.CheckDBEncryption, "Database encryption", "Database encryption not detected (recommended for sensitive data)"))
	}

	return results
}

// inspectSchema produces the schema, migration and index results.
func (s *DatabaseService) inspectSchema(ctx context.Context, session domain.DatabaseSession, dsn dbcheck.DSN) []domain.CheckResult {
	log := logging.For("database").WithField("engine", dsn.Type)

	tables, err := session.Tables(ctx)
	if errors.Is(err, domain.ErrNotApplicable) {
		msg := "Schema inspection is not applicable for " + dsn.Type
		return []domain.CheckResult{
			domain.Warn(domain.CheckDBSchema, "Schema integrity check", "%s", msg),
			domain.Warn(domain.CheckDBMigrations, "Database migration system", "%s", msg),
			domain.Warn(domain.CheckDBIndexes, "Performance indexing check", "%s", msg),
		}
	}
	if err != nil {
		log.WithError(err).Warn("schema inspection failed")
		return []domain.CheckResult{
			domain.Fail(domain.CheckDBSchema, "Schema integrity check", "Schema inspection failed: %v", err),
		}
	}

	var results []domain.CheckResult
	if missing := dbcheck.MissingTables(tables); len(missing) > 0 {
		results = append(results, domain.Fail(domain.CheckDBSchema, "Schema integrity check", "Missing tables: %s", strings.Join(missing, ", ")))
	} else {
		results = append(results, domain.Pass(domain.CheckDBSchema, "Schema integrity check", "All required tables found"))
	}

	results = append(results, s.migrationResult(ctx, session, tables, log))

	return append(results, s.indexResult(ctx, session, log))
}

// indexResult passes when the inspected table has any index. The email
// recommendation is added whenever that column is not indexed.
func (s *DatabaseService) indexResult(ctx context.Context, session domain.DatabaseSession, log *logging.Entry) domain.CheckResult {
	const name = "Performance indexing check"
	columns, err := session.IndexedColumns(ctx, dbcheck.IndexedTable)
	if err != nil {
		log.WithError(err).Debug("index inspection failed")
	}

	var advice string
	if dbcheck.NeedsRecommendedIndex(columns) {
		advice = fmt.Sprintf(". Add index on '%s'", dbcheck.RecommendedIndex)
	}
	if len(columns) == 0 {
		return domain.Warn(domain.CheckDBIndexes, name, "No performance indexes detected%s", advice)
	}
	return domain.Pass(domain.CheckDBIndexes, name, "Found %d indexes%s", len(columns), advice)
}

func (s *DatabaseService) migrationResult(ctx context.Context, session domain.DatabaseSession, tables []string, log *logging.Entry) domain.CheckResult {
	const name = "Database migration system"
	if !dbcheck.HasMigrationTable(tables) {
		return domain.Warn(domain.CheckDBMigrations, name, "No standard migration table found (Alembic/Flyway/etc.)")
	}

	state, err := session.Migration(ctx)
	switch {
	case err != nil:
		log.WithError(err).Debug("migration version unavailable")
	case state.Known && state.Dirty:
		return domain.Warn(domain.CheckDBMigrations, name, "Migration version %d is dirty (a migration failed part way)", state.Version)
	case state.Known:
		return domain.Pass(domain.CheckDBMigrations, name, "Database migration table detected (version %d)", state.Version)
	}
	return domain.Pass(domain.CheckDBMigrations, name, "Database migration table detected")
}
