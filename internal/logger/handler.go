package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// ///////////////////////////////////////////////
// Handler
// ///////////////////////////////////////////////

// newline matches the platform so the log opens cleanly in Notepad.
var newline = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

const timeLayout = "2006-01-02T15:04:05.000Z"

var bufPool = sync.Pool{New: func() any { b := make([]byte, 0, 256); return &b }}

// Handler writes one formatted line per record. Handlers derived through
// WithAttrs and WithGroup share the writer lock.
type Handler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	// pre holds attributes already rendered by WithAttrs, without the
	// leading separator.
	pre   string
	group string
}

// NewHandler returns a Handler writing records at or above level to w. Pass
// a *slog.LevelVar to change the level at runtime.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{w: w, level: level, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	bp := bufPool.Get().(*[]byte)
	defer func() {
		*bp = (*bp)[:0]
		bufPool.Put(bp)
	}()

	b := r.Time.UTC().AppendFormat(*bp, timeLayout)
	b = append(b, " ["...)
	b = append(b, levelName(r.Level)...)
	b = append(b, "] "...)
	b = append(b, r.Message...)

	attrs := h.pre
	if r.NumAttrs() > 0 {
		var sb strings.Builder
		sb.WriteString(attrs)
		r.Attrs(func(a slog.Attr) bool {
			appendAttr(&sb, h.group, a)
			return true
		})
		attrs = sb.String()
	}
	if attrs != "" {
		b = append(b, " | "...)
		b = append(b, attrs...)
	}
	b = append(b, newline...)
	*bp = b

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(b)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.pre)
	for _, a := range attrs {
		appendAttr(&sb, h.group, a)
	}
	h2 := *h
	h2.pre = sb.String()
	return &h2
}

// WithGroup prefixes later attribute keys with name and a dot.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = joinKey(h.group, name)
	return &h2
}

// ///////////////////////////////////////////////
// Attribute Formatting
// ///////////////////////////////////////////////

// appendAttr writes key=value to sb, separated from earlier pairs by ", ".
// Groups flatten to dotted keys and empty attrs are dropped.
func appendAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := joinKey(prefix, a.Key)
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			appendAttr(sb, key, ga)
		}
		return
	}
	if sb.Len() > 0 {
		sb.WriteString(", ")
	}
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(formatValue(a.Value))
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// formatValue quotes values that would split ambiguously in the k=v list.
func formatValue(v slog.Value) string {
	s := v.String()
	if s == "" || strings.ContainsAny(s, " ,=|\"\t\r\n") {
		return strconv.Quote(s)
	}
	return s
}
