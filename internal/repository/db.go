package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// DB is an ent SQL driver over either a pgx pool or a sqlite handle.
type DB struct {
	drv     *entsql.Driver
	pool    *pgxpool.Pool
	dialect string
	logger  *slog.Logger
}

// Open connects to the configured database and wraps it for ent.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", cfg.Driver)
	switch cfg.Driver {
	case common.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case common.DriverSQLite, "":
		return openSQLite(ctx, cfg, logger)
	}
	return nil, common.NewAppError(common.CodeConfig, "unknown database driver "+cfg.Driver, common.ErrInvalidInput)
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database url", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "parse dsn", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "doc-extractor"

	dctx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "connect", err)
	}

	// Wrap pool as *sql.DB for ent
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database", "driver", common.DriverPostgres)
	return &DB{drv: entsql.OpenDB(dialect.Postgres, db), pool: pool, dialect: dialect.Postgres, logger: logger}, nil
}

func openSQLite(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	db, err := stdsql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "open sqlite", err)
	}
	// a single connection keeps in-memory databases shared and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	pctx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "connect", err)
	}
	logger.Info("successfully connected to database", "driver", common.DriverSQLite)
	return &DB{drv: entsql.OpenDB(dialect.SQLite, db), dialect: dialect.SQLite, logger: logger}, nil
}

// Dialect returns the ent dialect name.
func (d *DB) Dialect() string { return d.dialect }

// Close closes the database connections gracefully.
func (d *DB) Close() error {
	d.logger.Info("closing database connections")
	err := d.drv.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	if err != nil {
		d.logger.Error("failed to close database", "error", err)
		return err
	}
	d.logger.Info("database connections closed")
	return nil
}

// HealthCheck pings the database.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	d.logger.Debug("pinging database")
	if err := d.drv.DB().PingContext(ctx); err != nil {
		return common.NewAppError(common.CodeDatabase, "ping", err)
	}
	return nil
}

func (d *DB) builder() *entsql.DialectBuilder { return entsql.Dialect(d.dialect) }

// withTx runs fn in a transaction, rolling back on error.
func (d *DB) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := d.drv.Tx(ctx)
	if err != nil {
		return dbError("begin tx", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			d.logger.Error("rollback failed", "error", rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return dbError("commit", err)
	}
	return nil
}

func execute(ctx context.Context, eq dialect.ExecQuerier, q entsql.Querier) (stdsql.Result, error) {
	query, args := q.Query()
	var res stdsql.Result
	if err := eq.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func queryRows(ctx context.Context, eq dialect.ExecQuerier, q entsql.Querier) (*entsql.Rows, error) {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := eq.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func dbError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return err
	}
	return common.NewAppError(common.CodeDatabase, op, errors.Join(common.ErrDatabase, err))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, common.ErrNotFound)
}

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
