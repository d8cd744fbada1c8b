package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/1babii1/lessonsBot/core/config"
	"github.com/1babii1/lessonsBot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryRegisterCommand(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "help"}))
	require.NoError(t, reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "dump", Hidden: true}))
	require.NoError(t, reg.RegisterCommand("/add_lesson", commands.Command{Handler: noop, Description: "add", Usage: "<title> <count>"}))

	assert.ErrorIs(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "again"}), ErrInvalidCommand)
	assert.ErrorIs(t, reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "x"}), ErrInvalidCommand)
	assert.ErrorIs(t, reg.RegisterCommand("/nil", commands.Command{Description: "x"}), ErrInvalidCommand)

	assert.Equal(t, []tele.Command{
		{Text: "add_lesson", Description: "add"},
		{Text: "start", Description: "help"},
	}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 3)
	assert.Equal(t, []string{"/start - help", "/add_lesson <title> <count> - add"}, reg.HelpLines())
}

func TestRegistryLookupCommand(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/lessons", commands.Command{Handler: noop, Description: "list", Aliases: []string{"list"}}))

	for _, text := range []string{"/lessons", "/lessons@lessons_bot", "  /lessons extra", "/list"} {
		key, _, ok := reg.LookupCommand(text)
		assert.True(t, ok, text)
		assert.Equal(t, "/lessons", key, text)
	}
	for _, text := range []string{"lessons", "/lessonsx", ""} {
		_, _, ok := reg.LookupCommand(text)
		assert.False(t, ok, text)
	}
}

func TestCommandWord(t *testing.T) {
	assert.Equal(t, "/done", CommandWord("/done@bot Piano lesson"))
	assert.Equal(t, "/done", CommandWord("/done\nPiano"))
	assert.Equal(t, "", CommandWord("done"))
}

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, lp.Timeout)

	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeWebhook},
		Webhook:  coreconfig.WebhookConfig{URL: "https://bot.example.com/hook", Listen: "0.0.0.0", Port: 8443},
	}
	wh, ok := BuildPoller(PollerOptionsFrom(cfg)).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example.com/hook", wh.Endpoint.PublicURL)
	assert.Equal(t, []string{"message"}, wh.AllowedUpdates)
}

func TestBuildHTTPClient(t *testing.T) {
	plain := BuildHTTPClient(0, 10*time.Second)
	assert.IsType(t, &http.Transport{}, plain.Transport)
	assert.Equal(t, 30*time.Second, plain.Timeout)

	retrying := BuildHTTPClient(2, 10*time.Second)
	assert.IsType(t, &retryTransport{}, retrying.Transport)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestRetryTransport(t *testing.T) {
	calls := 0
	rt := &retryTransport{
		maxRetries: 2,
		backoff:    time.Millisecond,
		base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, "chat_id=1", string(body))
			if calls < 3 {
				return nil, &net.OpError{Op: "dial", Err: errors.New("refused")}
			}
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		}),
	}
	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader("chat_id=1"))
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 3, calls)

	calls = 0
	rt.base = roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("permanent")
	})
	req, err = http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader("chat_id=1"))
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	assert.EqualError(t, err, "permanent")
	assert.Equal(t, 1, calls)
}
