package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider supplies replies for updates no route claims.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
	RateLimited() tele.HandlerFunc
}
