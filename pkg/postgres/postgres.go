package postgres

import (
	"context"
	"fmt"

	"finease/pkg/config"
	"finease/pkg/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Gateway keeps one pgx pool for the JSONB document table.
type Gateway struct {
	pool   *store.Lazy[*pgxpool.Pool]
	table  string
	logger *zap.Logger
}

func NewGateway(pgCfg *config.PostgresConfig, storeCfg *config.StoreConfig, logger *zap.Logger) *Gateway {
	g := &Gateway{
		table:  pgCfg.Table,
		logger: logger,
	}
	g.pool = store.NewLazy(
		func(ctx context.Context) (*pgxpool.Pool, error) {
			return NewPool(ctx, pgCfg, logger)
		},
		func(p *pgxpool.Pool) { p.Close() },
		storeCfg.ConnectTimeout,
	)
	return g
}

// NewPool dials Postgres and makes sure the document table exists.
func NewPool(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema(cfg.Table)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to prepare %s table: %w", cfg.Table, err)
	}

	logger.Info("Database connection established",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName),
	)

	return pool, nil
}

func schema(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS %[1]s_email_idx ON %[1]s (email);`, table)
}

func (g *Gateway) Connect(ctx context.Context) error {
	_, err := g.pool.Get(ctx)
	if err != nil {
		g.logger.Error("Postgres connection failed", zap.Error(err))
	}
	return err
}

// Pool returns the shared pool, connecting on first use.
func (g *Gateway) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	return g.pool.Get(ctx)
}

// Table is the name of the document table.
func (g *Gateway) Table() string {
	return g.table
}

func (g *Gateway) Close(ctx context.Context) error {
	if pool, ok := g.pool.Loaded(); ok {
		pool.Close()
	}
	return nil
}
