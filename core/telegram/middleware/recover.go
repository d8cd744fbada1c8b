package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/1babii1/lessonsBot/core/logger"
	tghelpers "github.com/1babii1/lessonsBot/core/telegram/helpers"
)

// PanicError is returned in place of a panic raised by a handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("handler panic: %v", e.Value) }

// Code is used as err_code in handler summaries.
func (e *PanicError) Code() string { return "PANIC" }

// RecoverMiddleware turns handler panics into a *PanicError and logs the stack.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				ctx := tghelpers.BuildContext(c)
				logger.Error(ctx, "tg", "tg.panic",
					slog.String("status", "fail"),
					slog.String("err", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				err = &PanicError{Value: r}
			}
		}()
		return next(c)
	}
}
