package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database wraps the pgx connection pool.
type Database struct {
	Pool *pgxpool.Pool
}

// DSN builds a PostgreSQL connection string from configuration.
// Credentials are escaped so passwords may contain URL metacharacters.
func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// NewPostgresPool creates a pgx connection pool, tests the connection and
// returns a Database instance.
func NewPostgresPool(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MinConns = int32(cfg.PoolMin)
	poolConfig.MaxConns = int32(cfg.PoolMax)
	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Second
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{Pool: pool}, nil
}

// Ping checks if the database connection is alive.
func (db *Database) Ping(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	return db.Pool.Ping(ctx)
}

// Close waits for all connections to be returned to the pool, then closes it.
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Stats returns statistics about the connection pool.
func (db *Database) Stats() *pgxpool.Stat {
	if db.Pool == nil {
		return nil
	}
	return db.Pool.Stat()
}
