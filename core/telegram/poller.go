package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/catalogbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// BuildPoller selects a webhook or long poller from the Telegram config sections.
func BuildPoller(tg coreconfig.TelegramConfig, wh coreconfig.WebhookConfig) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(tg.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", wh.Listen, wh.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: wh.URL},
		}
	}
	return &tele.LongPoller{Timeout: longPollTimeout(tg)}
}

func longPollTimeout(tg coreconfig.TelegramConfig) time.Duration {
	if tg.LongPollTimeoutSeconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(tg.LongPollTimeoutSeconds) * time.Second
}
