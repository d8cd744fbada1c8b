// Package bootstrap brings up logging and the backing store before the bot starts.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	coreconfig "github.com/1babii1/lessonsBot/core/config"
	"github.com/1babii1/lessonsBot/core/logger"
)

// Options control the bootstrap pipeline. S is the opened store handle.
type Options[S io.Closer] struct {
	Config *coreconfig.Config

	// LoggerInit defaults to logger.InitLogger.
	LoggerInit func(*coreconfig.Config) error
	// Migrate prepares the schema. It runs before Connect and may be nil.
	Migrate func(ctx context.Context) error
	Connect func(ctx context.Context) (S, error)
}

// Result exposes what the pipeline opened.
type Result[S io.Closer] struct {
	Store S
}

// Run initializes the logger, applies migrations and connects the store.
func Run[S io.Closer](ctx context.Context, opts Options[S]) (*Result[S], error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if opts.Connect == nil {
		return nil, fmt.Errorf("bootstrap: Connect is required")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	if opts.Migrate != nil {
		if err := opts.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}

	store, err := opts.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: store initialization failed: %w", err)
	}
	return &Result[S]{Store: store}, nil
}
