package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/1babii1/lessonsBot/core/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationResult summarises a RunMigrations call.
type MigrationResult struct {
	From    uint
	To      uint
	Applied []string
}

// RunMigrations applies every pending up migration for the configured driver.
func RunMigrations(ctx context.Context, cfg Config) (MigrationResult, error) {
	var res MigrationResult
	if err := cfg.Normalize(); err != nil {
		return res, err
	}
	if cfg.Driver == DriverPostgres {
		if err := WaitForPostgres(ctx, cfg.DSN(), 30*time.Second); err != nil {
			logMigrateFailure(ctx, "db.wait", err, 0)
			return res, &ConnectionError{Driver: cfg.Driver, Target: cfg.Target(), Err: err}
		}
	}

	dir := path.Join("migrations", cfg.Driver)
	files := listMigrationFiles(dir)
	preview, truncated := logger.SummarizeStrings(files, 6)
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "db.migrate.resolve",
		slog.String("driver", cfg.Driver),
		slog.Int("files_total", len(files)),
		slog.String("files_preview", preview),
		slog.Bool("files_truncated", truncated),
	)

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		logMigrateFailure(ctx, "db.migrate", err, 0)
		return res, fmt.Errorf("open migrations %s: %w", dir, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		logMigrateFailure(ctx, "db.migrate", err, 0)
		return res, fmt.Errorf("init migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logMigrateFailure(ctx, "db.migrate.close", errors.Join(srcErr, dbErr), 0)
		}
	}()

	from, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logMigrateFailure(ctx, "db.migrate", err, 0)
		return res, fmt.Errorf("read migration version: %w", err)
	}
	res.From, res.To = from, from

	start := time.Now()
	upErr := m.Up()
	took := logger.Took(start)
	switch {
	case upErr == nil:
	case errors.Is(upErr, migrate.ErrNoChange):
		logSummary(ctx, res, took)
		return res, nil
	default:
		logMigrateFailure(ctx, "db.migrate.apply", upErr, took)
		return res, fmt.Errorf("apply migrations: %w", upErr)
	}

	to, _, err := m.Version()
	if err != nil {
		return res, fmt.Errorf("read migration version: %w", err)
	}
	res.To = to
	res.Applied = selectApplied(files, uint64(from), uint64(to))
	logSummary(ctx, res, took)
	return res, nil
}

func logSummary(ctx context.Context, res MigrationResult, took time.Duration) {
	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "db.migrate",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(res.From)),
		slog.Uint64("to_ver", uint64(res.To)),
		slog.Int("files", len(res.Applied)),
		slog.Duration("duration", took),
	)
}

func logMigrateFailure(ctx context.Context, event string, err error, took time.Duration) {
	logger.LogEvent(ctx, logger.MIG, slog.LevelError, event,
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
		slog.Duration("duration", took),
	)
}

func listMigrationFiles(dir string) []string {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

func selectApplied(files []string, from, to uint64) []string {
	if to <= from {
		return nil
	}
	var out []string
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
