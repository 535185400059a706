// Package postgres provides the order store connection pool & its schema migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/crabzie/production-scheduler/config/storage/postgresql/migrations"
	config "github.com/crabzie/production-scheduler/config/utils"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	zaptracer "github.com/jackc/pgx-zap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
)

// ErrDirtySchema means a previous migration failed half-way and needs a manual fix
var ErrDirtySchema = errors.New("order store schema is dirty")

// DB wraps the pgxpool over the order store
type DB struct {
	*pgxpool.Pool
	url string
	log *zap.Logger
}

// URL builds the connection url from the config
func URL(config *config.DB) string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=disable",
		config.Connection,
		config.User,
		config.Password,
		config.Host,
		config.Port,
		config.Name,
	)
}

// poolConfig parses url, traces every query through the zap logger & caps the pool.
func poolConfig(url string, maxConns int32, logger *zap.Logger) (*pgxpool.Config, error) {
	dbCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	dbCfg.MaxConns = max(1, maxConns)
	dbCfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   zaptracer.NewLogger(logger),
		LogLevel: tracelog.LogLevelDebug,
	}
	// works behind pgbouncer in transaction mode
	dbCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	dbCfg.ConnConfig.StatementCacheCapacity = 0

	return dbCfg, nil
}

// New connects to the order store and pings it
func New(ctx context.Context, config *config.DB, logger *zap.Logger) (*DB, error) {
	url := URL(config)

	dbCfg, err := poolConfig(url, config.MaxConns, logger)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping order store: %w", err)
	}

	return &DB{Pool: pool, url: url, log: logger}, nil
}

// Migrate applies the embedded orders & stage_assignments migrations
func (db *DB) Migrate() error {
	driver, err := iofs.New(migrations.MigrationsFS, ".")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", driver, db.url)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	if dirty {
		return fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}
	db.log.Info("Order store schema ready", zap.Uint("version", version))
	return nil
}

// Health pings the pool, used by the planner's /health endpoint
func (db *DB) Health(ctx context.Context) error {
	return db.Ping(ctx)
}

// Close closes the database connection
func (db *DB) Close() {
	db.Pool.Close()
}
