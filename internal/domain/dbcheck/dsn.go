// Package dbcheck holds the engine-independent rules of the database checks.
package dbcheck

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	EnginePostgres   = "postgresql"
	EngineMySQL      = "mysql"
	EngineSQLite     = "sqlite"
	EngineClickHouse = "clickhouse"
	EngineRedis      = "redis"
)

var engineAliases = map[string]string{
	"postgres":   EnginePostgres,
	"postgresql": EnginePostgres,
	"pgx":        EnginePostgres,
	"mysql":      EngineMySQL,
	"mariadb":    EngineMySQL,
	"sqlite":     EngineSQLite,
	"sqlite3":    EngineSQLite,
	"clickhouse": EngineClickHouse,
	"redis":      EngineRedis,
	"rediss":     EngineRedis,
}

// DSN is a parsed database connection string.
type DSN struct {
	Raw      string
	Scheme   string
	Type     string
	Username string
	Password string
	Host     string
	Port     int
	Database string
	Path     string
	Query    url.Values
}

// Parse splits a URL-style connection string. The scheme part before a '+'
// names the engine, so "postgresql+psycopg2://" is postgresql.
func Parse(raw string) (DSN, error) {
	if strings.TrimSpace(raw) == "" {
		return DSN{}, fmt.Errorf("connection string is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return DSN{}, fmt.Errorf("parsing connection string: %w", err)
	}
	if u.Scheme == "" {
		return DSN{}, fmt.Errorf("connection string %q has no scheme", redact(raw))
	}

	base := strings.ToLower(strings.SplitN(u.Scheme, "+", 2)[0])
	engine, ok := engineAliases[base]
	if !ok {
		engine = base
	}

	d := DSN{
		Raw:    raw,
		Scheme: base,
		Type:   engine,
		Query:  u.Query(),
	}

	if engine == EngineSQLite {
		d.Path = strings.TrimPrefix(u.Path, "/")
		if d.Path == "" {
			d.Path = u.Opaque
		}
		if d.Path == "" {
			return DSN{}, fmt.Errorf("sqlite connection string has no database path")
		}
		return d, nil
	}

	if u.User != nil {
		d.Username = u.User.Username()
		d.Password, _ = u.User.Password()
	}
	d.Host = u.Hostname()
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return DSN{}, fmt.Errorf("invalid port %q: %w", p, err)
		}
		d.Port = port
	}
	d.Database = strings.TrimPrefix(u.Path, "/")
	if d.Host == "" {
		return DSN{}, fmt.Errorf("connection string has no host")
	}
	return d, nil
}

// Redacted returns the connection string with the password masked.
func (d DSN) Redacted() string { return redact(d.Raw) }

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
