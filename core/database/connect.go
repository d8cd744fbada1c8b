package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/1babii1/lessonsBot/core/logger"
)

// ConnectionError reports a store that could not be reached at startup.
type ConnectionError struct {
	Driver string
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s %s: %v", e.Driver, e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is or wraps a *ConnectionError.
func IsConnectionError(err error) bool {
	var cerr *ConnectionError
	return errors.As(err, &cerr)
}

// Connect opens the database, configures the pool and verifies connectivity.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if cfg.Driver == DriverPostgres {
		if err := WaitForPostgres(ctx, cfg.DSN(), 30*time.Second); err != nil {
			return nil, fail(ctx, cfg, "db.wait", err, 0)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	took := logger.Took(start)
	if err != nil {
		return nil, fail(ctx, cfg, "db.connect", err, took)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	logger.LogEvent(ctx, logger.DB, slog.LevelDebug, "db.pool",
		slog.String("driver", cfg.Driver),
		slog.Int("pool_open", cfg.MaxConnections),
	)
	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect",
		slog.String("status", "ok"),
		slog.String("driver", cfg.Driver),
		slog.String("db", cfg.Target()),
		slog.Duration("duration", took),
	)
	return db, nil
}

func fail(ctx context.Context, cfg Config, event string, err error, took time.Duration) error {
	logger.LogEvent(ctx, logger.DB, slog.LevelError, event,
		slog.String("status", "fail"),
		slog.String("driver", cfg.Driver),
		slog.String("db", cfg.Target()),
		slog.Duration("duration", took),
		slog.String("err", err.Error()),
	)
	return &ConnectionError{Driver: cfg.Driver, Target: cfg.Target(), Err: err}
}

// WaitForPostgres pings dsn until the server answers, ctx ends or timeout passes.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.PingContext(ctx)
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for database: %w", lastErr)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for database: %w", errors.Join(ctx.Err(), lastErr))
		case <-time.After(2 * time.Second):
		}
	}
}
