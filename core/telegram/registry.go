package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/1babii1/lessonsBot/core/logger"
	"github.com/1babii1/lessonsBot/core/telegram/commands"
)

// ErrInvalidCommand is returned for malformed registrations.
var ErrInvalidCommand = errors.New("telegram: invalid command registration")

// Registry holds bot commands in registration order and the text fallback.
type Registry struct {
	commands     map[string]commands.Command
	order        []string
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]commands.Command)}
}

// RegisterCommand adds a command. Names must start with a slash and be unique.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	switch {
	case r == nil, cmd.Handler == nil, cmd.Description == "":
		return r.reject(name, "invalid")
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		return r.reject(name, "no_slash_prefix")
	}
	if _, exists := r.commands[name]; exists {
		return r.reject(name, "duplicate")
	}
	r.commands[name] = cmd
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) reject(name, reason string) error {
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, "register.command.skip",
		slog.String("name", name),
		slog.String("reason", reason),
	)
	return fmt.Errorf("%w: %s (%s)", ErrInvalidCommand, name, reason)
}

// ListCommands returns the menu entries, optionally without hidden commands, sorted by name.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && meta.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// HelpLines lists visible commands in registration order.
func (r *Registry) HelpLines() []string {
	lines := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if cmd := r.commands[name]; !cmd.Hidden {
			lines = append(lines, cmd.HelpLine(name))
		}
	}
	return lines
}

// LookupCommand resolves the command word of text, e.g. "/done@lessons_bot Piano",
// by name or alias and returns the canonical name.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	name := CommandWord(text)
	if name == "" {
		return "", commands.Command{}, false
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// CommandWord returns the leading "/command" of text without any @botname suffix.
func CommandWord(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	word, _, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "\n")
	word, _, _ = strings.Cut(word, "@")
	return word
}

// Commands returns all registered commands keyed by name.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetTextFallback sets the handler for text that matches no command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// InitBotCommands publishes the visible commands to the Telegram menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) error {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelError, "register.commands",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("telegram: set commands: %w", err)
	}
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "register.commands",
		slog.String("status", "ok"),
		slog.Int("count", len(list)),
	)
	return nil
}
