// Package app wires configuration, storage and chat handlers into a runnable bot.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1babii1/lessonsBot/core/bootstrap"
	corecmd "github.com/1babii1/lessonsBot/core/cmd"
	"github.com/1babii1/lessonsBot/core/database"
	"github.com/1babii1/lessonsBot/core/logger"
	"github.com/1babii1/lessonsBot/core/mongodb"
	coretelegram "github.com/1babii1/lessonsBot/core/telegram"
	"github.com/1babii1/lessonsBot/core/telegram/router"
	"github.com/1babii1/lessonsBot/internal/bot"
	"github.com/1babii1/lessonsBot/internal/lesson"
	"github.com/1babii1/lessonsBot/internal/store/mongostore"
	"github.com/1babii1/lessonsBot/internal/store/sqlstore"
)

// App holds the opened store and the chat handlers.
type App struct {
	cfg     *Config
	store   lesson.Store
	handler *bot.Handler
}

// New wires an App around an already opened store.
func New(cfg *Config, store lesson.Store) *App {
	return &App{
		cfg:     cfg,
		store:   store,
		handler: bot.NewHandler(lesson.NewService(store)),
	}
}

// Bootstrap initializes logging, prepares the schema and opens the store.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options[lesson.Store]{
		Config:  &cfg.Config,
		Migrate: migrateFunc(cfg),
		Connect: func(ctx context.Context) (lesson.Store, error) { return OpenStore(ctx, cfg) },
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "app", "store.open",
		slog.String("status", "ok"),
		slog.String("backend", cfg.Storage.Backend),
	)
	return New(cfg, res.Store), nil
}

// BootstrapCarrier adapts Bootstrap to cmd.Options.
func BootstrapCarrier(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	a, err := Bootstrap(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func migrateFunc(cfg *Config) func(context.Context) error {
	if cfg.Storage.Backend == BackendMongo {
		return nil
	}
	return func(ctx context.Context) error {
		_, err := database.RunMigrations(ctx, cfg.Database)
		return err
	}
}

// OpenStore connects the configured backend. Connection failures are
// returned as *database.ConnectionError.
func OpenStore(ctx context.Context, cfg *Config) (lesson.Store, error) {
	switch cfg.Storage.Backend {
	case BackendMongo:
		client, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return mongostore.New(client, cfg.Mongo.Database), nil
	case BackendSQLite, BackendPostgres:
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(db), nil
	}
	return nil, fmt.Errorf("app: unknown storage backend %q", cfg.Storage.Backend)
}

// Migrate applies schema migrations for relational backends. MongoDB needs none.
func Migrate(ctx context.Context, cfg *Config) (database.MigrationResult, error) {
	if cfg.Storage.Backend == BackendMongo {
		return database.MigrationResult{}, nil
	}
	return database.RunMigrations(ctx, cfg.Database)
}

// Handler returns the chat command handler.
func (a *App) Handler() *bot.Handler {
	return a.handler
}

// TelegramRunOptions registers the chat commands and builds the routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.handler.Register(reg); err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: register commands: %w", err)
	}
	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(reg)...)
	return coretelegram.RunOptions{
		Config:   &a.cfg.Config,
		Registry: reg,
		Routes:   routes,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}
