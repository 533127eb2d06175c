package router

import (
	"context"
	"strings"
	"time"

	tg "github.com/m3rciful/catalogbot/core/telegram"
	tghelpers "github.com/m3rciful/catalogbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Conversation is the minimal view of a per-user dialog manager.
type Conversation interface {
	InProgress(ctx context.Context, userID int64) bool
	HandleText(c tele.Context) error
}

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds the handlers for free text and documents.
// Text goes to an active conversation first, then to slash aliases, then to UnknownText.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		ctx := tghelpers.BuildContext(c)

		if conv != nil && c.Sender() != nil && conv.InProgress(ctx, c.Sender().ID) {
			return handleWithSummary(c, "dialog", start, func() error {
				return conv.HandleText(c)
			})
		}

		if text := c.Text(); reg != nil && strings.HasPrefix(text, "/") {
			if key, cmd, ok := reg.LookupCommand(strings.Fields(text)[0]); ok {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", nil)
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: handler},
		{Endpoint: tele.OnDocument, Handler: docHandler},
	}
}
