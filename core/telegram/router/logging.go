package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/1babii1/lessonsBot/core/logger"
	tg "github.com/1babii1/lessonsBot/core/telegram"
	tghelpers "github.com/1babii1/lessonsBot/core/telegram/helpers"
)

// handleWithSummary runs fn under handlerName and logs one handler.handled
// line. tg.ErrNotHandled is logged as a skip and not returned.
func handleWithSummary(c tele.Context, handlerName string, fn func() error) error {
	start := time.Now()
	if v, ok := c.Get("update_start").(time.Time); ok {
		start = v
	}
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	if errors.Is(err, tg.ErrNotHandled) {
		logHandlerSummary(c, handlerName, start, "skip", nil)
		return nil
	}
	logHandlerSummary(c, handlerName, start, "", err)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, status string, err error) {
	ctx := tghelpers.WithHandler(c, handlerName)
	if status == "" {
		status = "ok"
		if err != nil {
			status = "fail"
		}
	}
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", tghelpers.Messages(c)),
		slog.Duration("duration", logger.Took(start)),
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

type coder interface{ Code() string }

// deriveErrorCode returns the Code of the first error in the chain that has one.
func deriveErrorCode(err error) string {
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	return "UNKNOWN_ERROR"
}
