package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/catalogbot/core/buildinfo"
	coreconfig "github.com/m3rciful/catalogbot/core/config"
)

var (
	initOnce sync.Once
	output   *asyncWriter
	closeOut sync.Once

	levelVar     slog.LevelVar
	debugSampler = newRatioSampler(1, 50)

	// L is the base logger. Before InitLogger it discards everything so packages
	// and tests can log without initialization.
	L = slog.New(discardHandler{})

	// DB logs database connectivity events.
	DB = L
	// MIG logs database migration events.
	MIG = L
	// TG logs Telegram transport events.
	TG = L
	// TWire logs Telegram wiring steps.
	TWire = L
	// Catalog logs remote catalog API calls.
	Catalog = L
	// Dialog logs conversation flow transitions.
	Dialog = L
	// State logs conversation state store activity.
	State = L
	// Ops logs the operational HTTP server.
	Ops = L
)

// InitLogger points every component logger at stdout. Calls after the first are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		var lc coreconfig.LoggingConfig
		if cfg != nil {
			lc = cfg.Logging
		}
		output = newAsyncWriter(os.Stdout)
		install(lc, output)
	})
	return nil
}

// install replaces L and the component loggers with ones writing to out.
func install(lc coreconfig.LoggingConfig, out *asyncWriter) {
	levelVar.Set(parseLevel(lc.Level))
	debugSampler.Set(parseDebugSample(lc.DebugSample))

	format := parseFormat(lc.Format)
	L = slog.New(newStructuredHandler(out, format, &levelVar))
	slog.SetDefault(L)

	DB = Component("db")
	MIG = Component("db.migrate")
	TG = Component("tg")
	TWire = Component("tg.wire")
	Catalog = Component("catalog")
	Dialog = Component("dialog")
	State = Component("state")
	Ops = Component("ops")

	L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("log_format", string(format)),
		slog.String("log_level", levelVar.Level().String()),
	)
}

// Shutdown flushes pending lines. Lines logged afterwards are discarded.
func Shutdown() error {
	var err error
	closeOut.Do(func() {
		if output != nil {
			err = output.Close()
		}
	})
	return err
}

func parseFormat(raw string) logFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kv", "text":
		return formatKV
	default:
		return formatJSON
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseDebugSample reads "n/d" or "d". "0" disables sampling; anything invalid means 1/50.
func parseDebugSample(raw string) (int, int) {
	if strings.TrimSpace(raw) == "" {
		return 1, 50
	}
	num, den := parseRatioSpec(raw)
	switch {
	case num == 0 && den == 0:
		return 0, 0
	case num <= 0 || den <= 0:
		return 1, 50
	}
	return num, den
}

// LogEvent logs attrs with a leading event attribute. A nil logg uses the one stored in ctx.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = fromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to the given component name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be logged.
func ShouldSampleDebug() bool {
	return debugSampler.Allow()
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
