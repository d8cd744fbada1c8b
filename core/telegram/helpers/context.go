// Package helpers carries per-update logging context and outgoing message
// helpers shared by handlers.
package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/1babii1/lessonsBot/core/logger"
)

const (
	contextKey  = "logger_ctx"
	messagesKey = "messages"
)

// StoreContext attaches ctx to c for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom returns the context stored on c, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the context stored on c or builds one carrying the
// request id and update, user and chat ids.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}
	if c == nil {
		return context.Background()
	}

	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	updateID := c.Update().ID

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler records the handler name on the stored context.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}

// ResetMessages zeroes the outgoing message counter of the update behind c.
func ResetMessages(c tele.Context) {
	c.Set(messagesKey, 0)
}

// CountMessage records one outgoing message accepted for delivery.
func CountMessage(c tele.Context) {
	n, _ := c.Get(messagesKey).(int)
	c.Set(messagesKey, n+1)
}

// Messages returns how many messages were accepted for the update behind c.
func Messages(c tele.Context) int {
	n, _ := c.Get(messagesKey).(int)
	return n
}
