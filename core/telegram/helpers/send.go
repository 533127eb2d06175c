package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	return SendTexts(c, []string{text}, opts...)
}

// SendTexts delivers texts in order as separate messages within a single queued job.
// Options apply to the last message only, so a keyboard lands under the final prompt.
// A retried job resumes after the last delivered message.
func SendTexts(c tele.Context, texts []string, opts ...*tele.SendOptions) error {
	if len(texts) == 0 {
		return nil
	}
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	sent := 0
	return sendAsync(c, "send.text", "sendMessage", func() error {
		for sent < len(texts) {
			var err error
			if sendOpts != nil && sent == len(texts)-1 {
				err = c.Send(texts[sent], sendOpts)
			} else {
				err = c.Send(texts[sent])
			}
			if err != nil {
				return err
			}
			sent++
		}
		return nil
	})
}
