package app

import (
	"context"

	tg "github.com/m3rciful/catalogbot/core/telegram"
	"github.com/m3rciful/catalogbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/catalogbot/core/telegram/helpers"
	"github.com/m3rciful/catalogbot/core/telegram/keyboard"
	"github.com/m3rciful/catalogbot/core/telegram/router"
	"github.com/m3rciful/catalogbot/core/telegram/ui"
	"github.com/m3rciful/catalogbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// Inline button uniques attached to dialog prompts.
const (
	cbSkip   = "dialog_skip"
	cbCancel = "dialog_cancel"
)

const (
	msgUnknownDocument = "I only understand text. Send /start to see the available commands."
	msgStaleButton     = "This button is no longer active. Send /start to see the available commands."
	msgRateLimited     = "Too many messages, please slow down."
)

var (
	_ router.Conversation = (*App)(nil)
	_ ui.FallbackProvider = (*App)(nil)
)

func (a *App) buildRegistry() (*tg.Registry, error) {
	reg := tg.NewRegistry()
	for _, c := range dialog.Commands {
		aliases := make([]string, len(c.Aliases))
		for i, alias := range c.Aliases {
			aliases[i] = "/" + alias
		}
		err := reg.RegisterCommand("/"+c.Name, commands.Command{
			Handler:     a.HandleText,
			Description: c.Description,
			Hidden:      c.Hidden,
			Aliases:     aliases,
		})
		if err != nil {
			return nil, err
		}
	}
	if err := reg.RegisterCallback(cbSkip, a.commandButton(dialog.CmdSkip)); err != nil {
		return nil, err
	}
	if err := reg.RegisterCallback(cbCancel, a.commandButton(dialog.CmdCancel)); err != nil {
		return nil, err
	}
	reg.SetCallbackNotFound(a.UnknownCallback())
	return reg, nil
}

// InProgress reports whether the user is inside a dialog.
func (a *App) InProgress(ctx context.Context, userID int64) bool {
	return a.engine.InProgress(ctx, userID)
}

// HandleText feeds the message text to the dialog engine.
func (a *App) HandleText(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	return a.respond(c, dialog.ParseInput(c.Sender().ID, c.Text()))
}

// commandButton makes an inline button behave exactly like typing /cmd.
func (a *App) commandButton(cmd string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		return a.respond(c, dialog.CommandInput(c.Sender().ID, cmd))
	}
}

func (a *App) respond(c tele.Context, in dialog.Input) error {
	ctx := tghelpers.BuildContext(c)
	r := a.engine.Dispatch(ctx, in)
	if markup := replyMarkup(r.Keyboard); markup != nil {
		return tghelpers.SendTexts(c, r.Messages, &tele.SendOptions{ReplyMarkup: markup})
	}
	return tghelpers.SendTexts(c, r.Messages)
}

func replyMarkup(kb dialog.Keyboard) *tele.ReplyMarkup {
	cancel := keyboard.InlineBtn{Text: "❌ Cancel", Unique: cbCancel}
	switch kb {
	case dialog.KeyboardCancel:
		return keyboard.InlineRow(cancel)
	case dialog.KeyboardSkipCancel:
		return keyboard.InlineRow(keyboard.InlineBtn{Text: "⏭ Skip", Unique: cbSkip}, cancel)
	}
	return nil
}

// UnknownText answers text no command claimed; the engine replies with the matching hint.
func (a *App) UnknownText() tele.HandlerFunc {
	return a.HandleText
}

// UnknownDocument answers files and other non-text messages.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownDocument)
	}
}

// UnknownCallback answers presses of buttons this build does not know.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgStaleButton)
	}
}

// RateLimited answers users that exceed the configured update rate.
func (a *App) RateLimited() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgRateLimited)
	}
}
