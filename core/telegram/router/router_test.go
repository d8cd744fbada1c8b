package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/1babii1/lessonsBot/core/telegram"
	"github.com/1babii1/lessonsBot/core/telegram/commands"
	"github.com/1babii1/lessonsBot/core/telegram/telegramtest"
)

func registryWith(t *testing.T, name string, h tele.HandlerFunc, aliases ...string) *tg.Registry {
	t.Helper()
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand(name, commands.Command{Handler: h, Description: "test", Aliases: aliases}))
	return reg
}

func TestTextRoutesDispatchesCommandsAddressedWithBotName(t *testing.T) {
	var got string
	reg := registryWith(t, "/done", func(c tele.Context) error {
		got = c.Text()
		return nil
	})
	routes := TextRoutes(reg)
	require.Len(t, routes, 1)
	assert.Equal(t, tele.OnText, routes[0].Endpoint)

	c := telegramtest.NewText(1, 10, "/done@lessons_bot Piano")
	require.NoError(t, routes[0].Handler(c))
	assert.Equal(t, "/done@lessons_bot Piano", got)
}

func TestTextRoutesSkipsUnknownText(t *testing.T) {
	called := false
	reg := registryWith(t, "/done", func(tele.Context) error {
		called = true
		return nil
	})
	route := TextRoutes(reg)[0]

	for _, text := range []string{"hello", "/unknown Piano", "done Piano"} {
		require.NoError(t, route.Handler(telegramtest.NewText(2, 10, text)))
	}
	assert.False(t, called)
}

func TestTextRoutesFallback(t *testing.T) {
	reg := tg.NewRegistry()
	var seen []string
	reg.SetTextFallback(func(c tele.Context) error {
		seen = append(seen, c.Text())
		return tg.ErrNotHandled
	})
	route := TextRoutes(reg)[0]
	require.NoError(t, route.Handler(telegramtest.NewText(3, 10, "hi")))
	assert.Equal(t, []string{"hi"}, seen)
}

func TestCommandRoutesIncludeAliases(t *testing.T) {
	boom := errors.New("boom")
	reg := registryWith(t, "/lessons", func(tele.Context) error { return boom }, "list")
	routes := CommandRoutes(reg)

	endpoints := make([]any, 0, len(routes))
	for _, r := range routes {
		endpoints = append(endpoints, r.Endpoint)
	}
	assert.ElementsMatch(t, []any{"/lessons", "/list"}, endpoints)
	assert.ErrorIs(t, routes[0].Handler(telegramtest.NewText(4, 10, "/lessons")), boom)
}

type codedError struct{}

func (codedError) Error() string { return "coded" }
func (codedError) Code() string  { return "store error" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "STORE_ERROR", deriveErrorCode(fmt.Errorf("wrapped: %w", codedError{})))
	assert.Equal(t, "UNKNOWN_ERROR", deriveErrorCode(errors.New("plain")))
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "add_lesson", normalizeHandlerName("/add_lesson"))
	assert.Equal(t, "unknown", normalizeHandlerName(" "))
}
