package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtroode/reelscore-server/internal/database"
)

// DBTX is the subset of pgxpool.Pool used by repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	connectTimeout    = 5 * time.Second
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = 30 * time.Second
)

var errNoPool = errors.New("connection pool is not initialized")

// Connection owns the pgx pool shared by all repositories.
type Connection struct {
	*pgxpool.Pool
}

var _ DBTX = (*Connection)(nil)

// NewConnection opens a pool, checks the database answers and applies
// pending migrations. The DSN's own pool_* parameters take precedence over
// the defaults set here.
func NewConnection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if conf.ConnConfig.ConnectTimeout == 0 {
		conf.ConnConfig.ConnectTimeout = connectTimeout
	}
	conf.MaxConnIdleTime = maxConnIdleTime
	conf.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if err := database.Migrate(ctx, dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Connection{Pool: pool}, nil
}

// Close releases every pooled connection.
func (c *Connection) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// Ping is used by the readiness probe.
func (c *Connection) Ping(ctx context.Context) error {
	if c.Pool == nil {
		return errNoPool
	}
	return c.Pool.Ping(ctx)
}
