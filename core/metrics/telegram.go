package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		telegramMessagesSentTotal,
		telegramSendFailuresTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Incoming updates by handler name.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of updates dropped by the rate limiter.",
		},
	)

	telegramMessagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_messages_sent_total",
			Help: "Outbound messages successfully delivered to Telegram.",
		},
	)

	telegramSendFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_send_failures_total",
			Help: "Outbound sends that failed after all retries, by error kind.",
		},
		[]string{"kind"},
	)
)

// IncTelegramCommand counts an update routed to the named handler.
func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

// IncRateLimitTriggered counts an update rejected by the rate limiter.
func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

// AddMessagesSent adds n delivered outbound messages.
func AddMessagesSent(n int) {
	if n > 0 {
		telegramMessagesSentTotal.Add(float64(n))
	}
}

// IncSendFailure counts a terminal outbound send failure.
func IncSendFailure(kind string) {
	telegramSendFailuresTotal.WithLabelValues(norm(kind)).Inc()
}
