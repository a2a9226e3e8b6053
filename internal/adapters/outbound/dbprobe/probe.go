// Package dbprobe opens inspection sessions against the databases the
// database checker supports.
package dbprobe

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/dbcheck"
	"github.com/openkraft/prodcheck/internal/logging"
)

var log = logging.For("dbprobe")

type opener func(ctx context.Context, dsn dbcheck.DSN) (domain.DatabaseSession, error)

// Probe implements domain.DatabaseProbe.
type Probe struct {
	openers map[string]opener
}

// New returns a probe for postgresql, mysql, sqlite, clickhouse and redis.
func New() *Probe {
	return &Probe{openers: map[string]opener{
		dbcheck.EnginePostgres:   openPostgres,
		dbcheck.EngineMySQL:      openMySQL,
		dbcheck.EngineSQLite:     openSQLite,
		dbcheck.EngineClickHouse: openClickHouse,
		dbcheck.EngineRedis:      openRedis,
	}}
}

func (p *Probe) Supports(engine string) bool {
	_, ok := p.openers[engine]
	return ok
}

// Open connects to the database described by dsn. The returned session must
// be closed by the caller.
func (p *Probe) Open(ctx context.Context, dsn dbcheck.DSN) (domain.DatabaseSession, error) {
	open, ok := p.openers[dsn.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedEngine, dsn.Type)
	}
	log.WithField("dsn", dsn.Redacted()).Debug("opening database session")
	return open(ctx, dsn)
}

// driverURL rewrites the connection string for a Go driver: the scheme loses
// any "+driver" suffix and pool sizing parameters, which drivers would
// forward to the server as settings, are removed.
func driverURL(dsn dbcheck.DSN, scheme string) (string, error) {
	u, err := url.Parse(dsn.Raw)
	if err != nil {
		return "", fmt.Errorf("parsing connection string: %w", err)
	}
	u.Scheme = scheme
	q := u.Query()
	for _, p := range dbcheck.PoolParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// hasVersionTable matches the name exactly, the way the migrate drivers look
// it up, so they never fall through to creating the table.
func hasVersionTable(tables []string) bool {
	return slices.Contains(tables, migrationsTable)
}
