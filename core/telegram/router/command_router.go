// Package router turns registry entries into telebot routes that log one
// summary line per handled update.
package router

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/1babii1/lessonsBot/core/logger"
	tg "github.com/1babii1/lessonsBot/core/telegram"
)

// CommandRoutes binds every registered command and its aliases to a handler
// that logs a summary line.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}
	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		handler := commandHandler(normalizeHandlerName(name), def.Handler)
		routes = append(routes, tg.Route{Endpoint: name, Handler: handler})
		for _, alias := range def.Aliases {
			if alias != "" && alias[0] != '/' {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: handler})
		}
	}
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "routes.commands",
		slog.String("status", "ok"),
		slog.Int("count", len(routes)),
	)
	return routes
}

func commandHandler(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return handleWithSummary(c, name, func() error { return h(c) })
	}
}
