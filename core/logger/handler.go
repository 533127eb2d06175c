package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

// structuredHandler writes one flat line per record, either JSON or key=value,
// with keys in keyOrder first.
type structuredHandler struct {
	level  slog.Leveler
	format logFormat
	out    *asyncWriter
	pre    fields
	group  string
}

func newStructuredHandler(out *asyncWriter, format logFormat, level slog.Leveler) *structuredHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &structuredHandler{level: level, format: format, out: out, pre: fields{}}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.out == nil {
		return fmt.Errorf("logger: writer not initialized")
	}
	f := h.pre.clone()
	f["ts"] = r.Time.UTC().Truncate(time.Millisecond).Format(timeFormatMillis)
	f["level"] = normalizeLevel(r.Level.String())
	r.Attrs(func(a slog.Attr) bool {
		f.add(h.group, a)
		return true
	})
	f.fromContext(ctx)
	f.finish(r.Message, h.format == formatJSON)

	var line []byte
	if h.format == formatKV {
		line = f.kv()
	} else {
		var err error
		if line, err = f.json(); err != nil {
			return err
		}
	}
	return h.out.Write(append(line, '\n'))
}

// WithAttrs resolves attrs once, under the group active at call time.
func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.pre = h.pre.clone()
	for _, a := range attrs {
		clone.pre.add(h.group, a)
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

// fields is one log line before rendering.
type fields map[string]any

func (f fields) clone() fields {
	out := make(fields, len(f)+8)
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f fields) add(prefix string, a slog.Attr) {
	key := joinKey(prefix, a.Key)
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			f.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if d, ok := durationOf(v); ok {
		f[msKey(key)] = roundMS(d).Milliseconds()
		return
	}
	if val, ok := plain(v); ok {
		f[key] = val
	}
}

// fromContext fills request identifiers the record did not set itself.
func (f fields) fromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	set := func(key string, val any, zero bool) {
		if _, ok := f[key]; !ok && !zero {
			f[key] = val
		}
	}
	rid := ridFrom(ctx)
	set("rid", rid, rid == "")
	updateID := updateIDFrom(ctx)
	set("update_id", updateID, updateID == 0)
	userID := userIDFrom(ctx)
	set("user_id", userID, userID == 0)
	chatID := chatIDFrom(ctx)
	set("chat_id", chatID, chatID == 0)
	handler := handlerFrom(ctx)
	set("handler", handler, handler == "")
}

func (f fields) finish(msg string, keepFullRID bool) {
	if rid := f.str("rid"); rid != "" {
		if short := compactRID(rid); short != rid {
			if _, ok := f["rid_full"]; keepFullRID && !ok {
				f["rid_full"] = rid
			}
			f["rid"] = short
		}
	}
	if f.str("event") == "" {
		f["event"] = "unknown"
		if msg != "" {
			f["event"] = msg
		}
	}
	if f.str("component") == "" {
		f["component"] = "app"
	}
	if s := f.str("status"); s != "" {
		s, _ = known(s, knownStatus)
		f["status"] = s
	}
	if o := f.str("outcome"); o != "" {
		if o, ok := known(o, knownOutcome); ok {
			f["outcome"] = o
		} else {
			delete(f, "outcome")
		}
	}
	for k, v := range f {
		if v == nil || v == "" {
			delete(f, k)
		}
	}
}

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// keys returns keyOrder entries present in f, then the rest sorted.
func (f fields) keys() []string {
	out := make([]string, 0, len(f))
	for _, k := range keyOrder {
		if _, ok := f[k]; ok {
			out = append(out, k)
		}
	}
	lead := len(out)
	for k := range f {
		if !isOrdered(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out[lead:])
	return out
}

func (f fields) json() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range f.keys() {
		v, err := json.Marshal(f[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (f fields) kv() []byte {
	var b strings.Builder
	for i, k := range f.keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		s := fmt.Sprint(f[k])
		if strings.IndexFunc(s, needsQuote) >= 0 {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	}
	return []byte(b.String())
}

func isOrdered(key string) bool {
	for _, k := range keyOrder {
		if k == key {
			return true
		}
	}
	return false
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// msKey renames duration attributes so every duration is logged as *_ms.
func msKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	default:
		return key + "_ms"
	}
}

func durationOf(v slog.Value) (time.Duration, bool) {
	if v.Kind() == slog.KindDuration {
		return v.Duration(), true
	}
	if v.Kind() == slog.KindAny {
		d, ok := v.Any().(time.Duration)
		return d, ok
	}
	return 0, false
}

func roundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

func plain(v slog.Value) (any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return v.Bool(), true
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return int64(u), true
		}
		return v.Uint64(), true
	case slog.KindFloat64:
		return v.Float64(), true
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return nil, false
	case error:
		return x.Error(), true
	case fmt.Stringer:
		return x.String(), true
	case string:
		return strings.TrimSpace(x), true
	default:
		return fmt.Sprint(x), true
	}
}
