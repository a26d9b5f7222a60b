package logs

import (
	"context"
	"log/slog"
	"slices"
)

// Span identifies a unit of work across log records.
type Span string

type spanKey struct{}

var SpanKey spanKey

type attrsKey struct{}

// WithAttrs returns a context whose log records carry attrs in addition to those already
// in ctx.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return context.WithValue(ctx, attrsKey{}, append(slices.Clip(prev), attrs...))
}

func contextAttrs(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}
