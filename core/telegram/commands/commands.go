package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command describes a slash command exposed by the bot.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Hidden commands are routed but not published in the Telegram menu.
	Hidden bool
	// Aliases resolve through text routing only; they are never published.
	Aliases []string
}
