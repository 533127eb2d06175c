package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/catalogbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// updateSeen remembers recently logged update IDs so stacked middleware logs each receipt once.
type updateSeen struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[int]time.Time
}

var receipts = &updateSeen{ttl: 10 * time.Second, seen: make(map[int]time.Time)}

func (u *updateSeen) firstTime(id int, now time.Time) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for k, ts := range u.seen {
		if now.Sub(ts) > u.ttl {
			delete(u.seen, k)
		}
	}
	if _, ok := u.seen[id]; ok {
		return false
	}
	u.seen[id] = now
	return true
}

// LoggerMiddleware assigns the request id and logs one sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		chat, user := c.Chat(), c.Sender()
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}

		rid, _ := c.Get("rid").(string)
		if rid == "" {
			rid = logger.BuildRID(upd.ID, chatID, userID)
			c.Set("rid", rid)
		}
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() && receipts.firstTime(upd.ID, time.Now()) {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				key, payload := callbacks.ParseCallbackData(upd.Callback)
				attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
				if payload != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
				}
			case upd.Message != nil:
				if t := c.Text(); t != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
				}
			}
			logger.Debug(ctx, "tg", "update.received", attrs...)
		}

		return next(c)
	}
}
