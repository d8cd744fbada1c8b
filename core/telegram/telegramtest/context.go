// Package telegramtest provides a tele.Context double for handler tests.
package telegramtest

import (
	"fmt"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Context is an in-memory tele.Context for a single text message. Methods not
// overridden here panic through the nil embedded interface.
type Context struct {
	tele.Context

	mu      sync.Mutex
	update  tele.Update
	store   map[string]any
	sent    []string
	SendErr error
}

// NewText builds a context for a private-chat text message.
func NewText(updateID int, chatID int64, text string) *Context {
	chat := &tele.Chat{ID: chatID, Type: tele.ChatPrivate}
	user := &tele.User{ID: chatID, Username: "student"}
	return &Context{
		update: tele.Update{
			ID:      updateID,
			Message: &tele.Message{ID: updateID, Chat: chat, Sender: user, Text: text},
		},
		store: make(map[string]any),
	}
}

// Update returns the wrapped update.
func (c *Context) Update() tele.Update { return c.update }

// Message returns the wrapped message.
func (c *Context) Message() *tele.Message { return c.update.Message }

// Chat returns the message chat.
func (c *Context) Chat() *tele.Chat { return c.update.Message.Chat }

// Sender returns the message author.
func (c *Context) Sender() *tele.User { return c.update.Message.Sender }

// Text returns the message text.
func (c *Context) Text() string { return c.update.Message.Text }

// Send records what as text, or returns SendErr.
func (c *Context) Send(what interface{}, _ ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.sent = append(c.sent, fmt.Sprint(what))
	return nil
}

// Get reads a value set with Set.
func (c *Context) Get(key string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

// Set stores a per-update value.
func (c *Context) Set(key string, val interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = val
}

// Sent returns the texts sent so far.
func (c *Context) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}
