// Package commands describes chat commands exposed in the bot menu.
package commands

import tele "gopkg.in/telebot.v4"

// Command binds a slash command to its handler.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Usage is an argument hint such as "<title> <count>", shown in help text.
	Usage string
	// Hidden commands are routed but left out of the menu.
	Hidden  bool
	Aliases []string
}

// HelpLine renders "/name usage - description".
func (c Command) HelpLine(name string) string {
	line := name
	if c.Usage != "" {
		line += " " + c.Usage
	}
	if c.Description != "" {
		line += " - " + c.Description
	}
	return line
}
