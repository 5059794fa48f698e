package connections

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Client holds the database connection pool.
type Client struct {
	Pool *pgxpool.Pool
}

// ConnectDB establishes a connection to the PostgreSQL database. The pool is
// kept small: the dashboard issues two read-only queries per cache epoch.
func ConnectDB(databaseURL string, logger *slog.Logger) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 0
	config.MaxConnIdleTime = 5 * time.Minute
	config.MaxConnLifetime = time.Hour
	config.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	config.ConnConfig.RuntimeParams["application_name"] = "cityinsights"

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Info("Database connection established",
		"host", config.ConnConfig.Host,
		"database", config.ConnConfig.Database,
		"max_conns", config.MaxConns,
	)
	return &Client{Pool: pool}, nil
}

// Close gracefully closes the database connection pool.
func (c *Client) Close() {
	c.Pool.Close()
}

// Ping verifies the connection to the database is still alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.Pool.Ping(ctx)
}
