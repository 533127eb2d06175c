package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/catalogbot/core/config"
	"github.com/m3rciful/catalogbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the global chain: recover, optional rate limit, logging, counters.
func DefaultMiddlewares(cfg coreconfig.RateLimitConfig, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if interval := time.Duration(cfg.IntervalMS) * time.Millisecond; interval > 0 {
		ex := make(map[string]struct{}, len(cfg.ExcludeUpdates))
		for _, t := range cfg.ExcludeUpdates {
			ex[strings.ToLower(t)] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  interval,
				Exclude:   ex,
				OnLimited: onLimited,
			}),
		})
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
