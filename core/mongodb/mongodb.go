// Package mongodb opens the MongoDB client used by the document store.
package mongodb

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/1babii1/lessonsBot/core/database"
	"github.com/1babii1/lessonsBot/core/logger"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI      string `yaml:"uri" envconfig:"MONGODB_URI"`
	Database string `yaml:"database" envconfig:"MONGODB_DATABASE"`
	// ConnectTimeoutSeconds bounds the initial connect and ping.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds" envconfig:"MONGODB_CONNECT_TIMEOUT_SECONDS"`
}

// Normalize fills defaults.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.URI) == "" {
		c.URI = "mongodb://localhost:27017"
	}
	if strings.TrimSpace(c.Database) == "" {
		c.Database = "lessons_bot"
	}
	if c.ConnectTimeoutSeconds <= 0 {
		c.ConnectTimeoutSeconds = 10
	}
}

// Connect dials the server and pings the primary. Failures are returned as
// *database.ConnectionError.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	cfg.Normalize()
	timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err == nil {
		if err = client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
		}
	}
	took := logger.Took(start)
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect",
			slog.String("status", "fail"),
			slog.String("driver", "mongodb"),
			slog.String("db", cfg.Database),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return nil, &database.ConnectionError{Driver: "mongodb", Target: cfg.Database, Err: err}
	}

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect",
		slog.String("status", "ok"),
		slog.String("driver", "mongodb"),
		slog.String("db", cfg.Database),
		slog.Duration("duration", took),
	)
	return client, nil
}
