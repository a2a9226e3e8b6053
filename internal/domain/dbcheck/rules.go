package dbcheck

import "strings"

// RequiredTables must exist for the schema integrity check to pass.
var RequiredTables = []string{"customers", "integrations", "security_logs"}

// MigrationTables are bookkeeping tables of common migration tools.
var MigrationTables = []string{
	"alembic_version",
	"django_migrations",
	"flyway_schema_history",
	"schema_migrations",
	"goose_db_version",
}

// IndexedTable is inspected for performance indexes.
const IndexedTable = "customers"

// RecommendedColumn of IndexedTable is expected to carry an index.
const RecommendedColumn = "email"

// RecommendedIndex names RecommendedColumn the way recommendations print it.
const RecommendedIndex = IndexedTable + "." + RecommendedColumn

// NeedsRecommendedIndex reports whether RecommendedColumn is missing from
// the indexed columns of IndexedTable.
func NeedsRecommendedIndex(indexed []string) bool {
	for _, c := range indexed {
		if strings.EqualFold(c, RecommendedColumn) {
			return false
		}
	}
	return true
}

// PoolParams are query parameters that configure client side pooling.
var PoolParams = []string{"pool_size", "max_overflow", "pool_max_conns", "max_open_conns"}

// MissingTables returns the required tables absent from existing.
func MissingTables(existing []string) []string {
	have := toSet(existing)
	var missing []string
	for _, t := range RequiredTables {
		if !have[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

// HasMigrationTable reports whether any known migration table exists.
func HasMigrationTable(existing []string) bool {
	have := toSet(existing)
	for _, t := range MigrationTables {
		if have[t] {
			return true
		}
	}
	return false
}

// HasPooling reports whether the connection string configures a pool.
// SQLite is embedded and never needs one.
func HasPooling(d DSN) bool {
	if d.Type == EngineSQLite {
		return true
	}
	for _, p := range PoolParams {
		if d.Query.Has(p) {
			return true
		}
	}
	return false
}

// HasEncryption reports whether transport encryption is required by the
// connection string.
func HasEncryption(d DSN) bool {
	switch d.Type {
	case EnginePostgres:
		switch d.Query.Get("sslmode") {
		case "require", "verify-ca", "verify-full":
			return true
		}
	case EngineMySQL:
		for _, key := range []string{"ssl", "tls"} {
			switch strings.ToLower(d.Query.Get(key)) {
			case "true", "skip-verify", "preferred":
				return true
			}
		}
	case EngineClickHouse:
		return strings.EqualFold(d.Query.Get("secure"), "true")
	case EngineRedis:
		return d.Scheme == "rediss"
	}
	return false
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}
