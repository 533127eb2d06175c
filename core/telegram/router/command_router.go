package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/metrics"
	tg "github.com/m3rciful/catalogbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds every registered command to its endpoint with summary logging.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}
	names := reg.Names()
	routes := make([]tg.Route, 0, len(names))
	for _, name := range names {
		_, def, _ := reg.LookupCommand(name)
		label := normalizeHandlerName(name)
		handler := def.Handler
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler: func(c tele.Context) error {
				metrics.IncTelegramCommand(label)
				return handleWithSummary(c, label, time.Now(), func() error {
					return handler(c)
				}, slog.String("command", name))
			},
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "commands.bound"),
		slog.Int("commands", len(names)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
