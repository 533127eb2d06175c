package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type contextKey int

const (
	ctxLogger contextKey = iota
	ctxRID
	ctxUpdateID
	ctxUserID
	ctxChatID
	ctxHandler
)

// WithLogger stores log in ctx. LogEvent falls back to it when no logger is passed.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

func fromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxLogger).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRID, rid)
}

// RIDFrom returns the correlation id, or "".
func RIDFrom(ctx context.Context) string {
	return ridFrom(ctx)
}

// WithUpdateMeta attaches the Telegram update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = context.WithValue(ctx, ctxUpdateID, int64(updateID))
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxChatID, chatID)
}

// WithHandler names the handler serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

func ridFrom(ctx context.Context) string     { return stringValue(ctx, ctxRID) }
func handlerFrom(ctx context.Context) string { return stringValue(ctx, ctxHandler) }
func updateIDFrom(ctx context.Context) int64 { return int64Value(ctx, ctxUpdateID) }
func userIDFrom(ctx context.Context) int64   { return int64Value(ctx, ctxUserID) }
func chatIDFrom(ctx context.Context) int64   { return int64Value(ctx, ctxChatID) }

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}

func int64Value(ctx context.Context, key contextKey) int64 {
	if ctx == nil {
		return 0
	}
	n, _ := ctx.Value(key).(int64)
	return n
}

// SanitizeLimit drops control and format runes other than tab and newline,
// then keeps at most max runes. Use it for user text and remote error bodies.
func SanitizeLimit(s string, max int) string {
	if max <= 0 || s == "" {
		return ""
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if r != '\n' && r != '\t' && (unicode.IsControl(r) || unicode.Is(unicode.Cf, r)) {
			continue
		}
		if n == max {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// BuildRID returns a correlation id in the form updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// compactRID rewrites each numeric segment of a BuildRID value in base36,
// joined by dots. Other input is returned unchanged.
func compactRID(rid string) string {
	parts := strings.Split(strings.TrimSpace(rid), ":")
	if len(parts) != 3 {
		return rid
	}
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}
