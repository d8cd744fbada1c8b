package router

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/1babii1/lessonsBot/core/telegram"
)

// TextRoutes handles plain text and commands telebot did not route itself,
// such as a command addressed to another bot. Registered commands found in
// the text run their handler, everything else goes to the text fallback or
// is skipped.
func TextRoutes(reg *tg.Registry) []tg.Route {
	handler := func(c tele.Context) error {
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", func() error { return fb(c) })
			}
		}
		return handleWithSummary(c, "unknown_text", func() error { return tg.ErrNotHandled })
	}
	return []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  handler,
	}}
}
