package log

import (
	"context"
	"io"
	"log/slog"
)

// DefaultMaxAttrLen is the length string attribute values are clamped
// to before the record is handed to the underlying handler.
const DefaultMaxAttrLen = 512

// TruncateMarker is appended to clamped values so truncation is visible
// in the output.
const TruncateMarker = "...(truncated)"

// TruncateHandler wraps an slog.Handler and clamps long string
// attribute values. It intercepts records before the underlying handler
// formats them, so the cap applies uniformly to text and JSON output.
//
// A handler wrapper rather than call-site discipline keeps the cap in
// one place: every component logs raw values and the handler enforces
// the limit.
type TruncateHandler struct {
	handler slog.Handler
	maxLen  int
}

// NewTruncateHandler creates a TruncateHandler wrapping the given
// handler. A maxLen of zero or less selects DefaultMaxAttrLen. If
// handler is nil, the returned handler wraps slog.Default().Handler().
func NewTruncateHandler(handler slog.Handler, maxLen int) *TruncateHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxAttrLen
	}
	return &TruncateHandler{handler: handler, maxLen: maxLen}
}

// Enabled reports whether the handler handles records at the given
// level. It delegates to the underlying handler.
func (h *TruncateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle clamps the record's attributes and passes it on.
func (h *TruncateHandler) Handle(ctx context.Context, r slog.Record) error {
	clamped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clamped.AddAttrs(h.clampAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clamped)
}

// WithAttrs returns a new handler with the given attributes added,
// clamped first.
func (h *TruncateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clamped := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clamped[i] = h.clampAttr(a)
	}
	return &TruncateHandler{handler: h.handler.WithAttrs(clamped), maxLen: h.maxLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncateHandler) WithGroup(name string) slog.Handler {
	return &TruncateHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

// clampAttr clamps a single attribute, recursively handling groups.
func (h *TruncateHandler) clampAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		clamped := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			clamped[i] = h.clampAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clamped...)}
	}

	if a.Value.Kind() == slog.KindString {
		val := a.Value.String()
		if len(val) > h.maxLen {
			return slog.String(a.Key, val[:h.maxLen]+TruncateMarker)
		}
	}

	return a
}

// NewLogger creates a text-format slog.Logger with attribute clamping.
// Verbose selects Debug level; the default is Info so crawl progress
// stays visible without per-page noise.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	textHandler := slog.NewTextHandler(w, opts)

	return slog.New(NewTruncateHandler(textHandler, DefaultMaxAttrLen))
}

// NewJSONLogger creates a JSON-format slog.Logger with attribute
// clamping. Useful when scan logs feed structured aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	jsonHandler := slog.NewJSONHandler(w, opts)

	return slog.New(NewTruncateHandler(jsonHandler, DefaultMaxAttrLen))
}
