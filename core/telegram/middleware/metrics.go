package middleware

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/1babii1/lessonsBot/core/telegram/helpers"
)

// MessageMetricsMiddleware resets the per-update outgoing message counter
// that the send helpers increment.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.ResetMessages(c)
		return next(c)
	}
}
