package dbprobe

import (
	"context"
	"fmt"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/dbcheck"
	"github.com/redis/go-redis/v9"
)

// redisSession only supports Ping; Redis has no relational schema.
type redisSession struct {
	client *redis.Client
}

func openRedis(ctx context.Context, dsn dbcheck.DSN) (domain.DatabaseSession, error) {
	conn, err := driverURL(dsn, dsn.Scheme)
	if err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(conn)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &redisSession{client: client}, nil
}

func (s *redisSession) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisSession) Tables(context.Context) ([]string, error) {
	return nil, domain.ErrNotApplicable
}

func (s *redisSession) IndexedColumns(context.Context, string) ([]string, error) {
	return nil, domain.ErrNotApplicable
}

func (s *redisSession) Migration(context.Context) (domain.MigrationState, error) {
	return domain.MigrationState{}, domain.ErrNotApplicable
}

func (s *redisSession) Close() error {
	return s.client.Close()
}
