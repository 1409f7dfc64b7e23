package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nft-marketplace-backend/internal/common/logger"
)

type Client struct {
	pool *pgxpool.Pool
}

// NewClient opens a pgx pool and pings it.
func NewClient(ctx context.Context, databaseURL string) (*Client, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("host", cfg.ConnConfig.Host).
		Uint16("port", cfg.ConnConfig.Port).
		Str("database", cfg.ConnConfig.Database).
		Msg("PostgreSQL client initialized")

	return &Client{pool: pool}, nil
}

func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Client) Close() {
	c.pool.Close()
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Migrate creates the marketplace tables when they are missing.
func (c *Client) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			wallet_address TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			last_login TIMESTAMPTZ NOT NULL
		);`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS avatar_url TEXT NOT NULL DEFAULT '';`,
		`CREATE TABLE IF NOT EXISTS nfts (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			price NUMERIC(38,18) NOT NULL,
			image_url TEXT NOT NULL,
			creator TEXT NOT NULL,
			owner TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS nfts_creator_idx ON nfts (creator);`,
		`CREATE INDEX IF NOT EXISTS nfts_owner_idx ON nfts (owner);`,
		`CREATE TABLE IF NOT EXISTS nft_purchases (
			tx_hash TEXT PRIMARY KEY,
			nft_id UUID NOT NULL REFERENCES nfts (id),
			buyer TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}
