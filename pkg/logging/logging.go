// Package logging builds the structured slog.Logger used across
// deckvision's command-line tools and the scan manager's trace events.
package logging

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ctxKey is the context key slog attributes get stashed under by
// AppendCtx and read back out by ctxHandler.
type ctxKey struct{}

// Logger builds a slog.Logger writing to w. json selects JSON
// handler output over human-readable text; level sets the minimum
// enabled level. The returned logger's handler also promotes any
// attributes stashed in a context via AppendCtx onto every record
// logged with a *Context variant (InfoContext, WarnContext, ...).
func Logger(w io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{Handler: h})
}

// RotatingWriter returns an io.Writer that rolls path once it exceeds
// maxSizeMB, keeping up to maxBackups compressed copies for maxAgeDays.
func RotatingWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
}

// AppendCtx attaches attrs to ctx so that any slog call against a
// context-aware Logger carries them, without every call site threading
// them through explicitly.
func AppendCtx(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	existing, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// ctxHandler wraps an slog.Handler and merges AppendCtx attributes
// into every record it handles.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}
