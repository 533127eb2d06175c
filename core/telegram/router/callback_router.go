package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/catalogbot/core/telegram"
	"github.com/m3rciful/catalogbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes inline button presses through the registry.
// notFound overrides the registry fallback when set.
func CallbackRoute(reg *tg.Registry, notFound tele.HandlerFunc) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		start := time.Now()
		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		_ = c.Respond()

		if h, ok := reg.GetCallback(key); ok {
			return handleWithSummary(c, name, start, func() error { return h(c) }, extras...)
		}

		fallback := notFound
		if fallback == nil {
			fallback = reg.CallbackNotFound()
		}
		extras = append(extras, slog.String("reason", "not_found"))
		return handleWithSummary(c, name, start, func() error {
			if fallback != nil {
				return fallback(c)
			}
			return nil
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
