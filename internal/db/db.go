package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options tune the connection pool and the connect retry.
type Options struct {
	MaxOpenConns   int
	ConnectTimeout time.Duration
}

// DriverFor picks the driver for dsn: postgres:// and postgresql:// URLs use
// PostgreSQL, anything else is a SQLite path.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open connects to dsn, retrying with exponential backoff until
// opts.ConnectTimeout elapses. SQLite connections get the recommended pragmas.
func Open(ctx context.Context, dsn string, opts Options, logger *zap.Logger) (*sqlx.DB, error) {
	driver := DriverFor(dsn)

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = opts.ConnectTimeout
	if policy.MaxElapsedTime <= 0 {
		policy.MaxElapsedTime = 30 * time.Second
	}
	policy.MaxInterval = 5 * time.Second

	var database *sqlx.DB
	err := backoff.RetryNotify(
		func() error {
			var err error
			database, err = sqlx.ConnectContext(ctx, driver, dsn)
			if err != nil {
				return fmt.Errorf("connect %s: %w", driver, err)
			}
			return nil
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("database connection failed, retrying",
				zap.String("driver", driver),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		if strings.Contains(dsn, ":memory:") {
			// Every connection to :memory: is a separate database.
			database.SetMaxOpenConns(1)
		}
		if _, err := database.ExecContext(ctx, `
			PRAGMA journal_mode = WAL;
			PRAGMA foreign_keys = ON;
			PRAGMA busy_timeout = 5000;
		`); err != nil {
			database.Close()
			return nil, fmt.Errorf("set sqlite pragmas: %w", err)
		}
	} else if opts.MaxOpenConns > 0 {
		database.SetMaxOpenConns(opts.MaxOpenConns)
		database.SetMaxIdleConns(opts.MaxOpenConns)
		database.SetConnMaxIdleTime(5 * time.Minute)
	}

	logger.Info("database connected", zap.String("driver", driver))
	return database, nil
}
