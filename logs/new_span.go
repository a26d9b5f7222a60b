package logs

import (
	"context"
	"crypto/rand"
)

// NewSpan starts a named span under the span of ctx, if any.
type NewSpan func(ctx context.Context, name string) (context.Context, Span)

func (Module) NewSpan(
	logger Logger,
) NewSpan {
	return func(ctx context.Context, name string) (context.Context, Span) {
		parent, _ := ctx.Value(SpanKey).(Span)

		span := Span(rand.Text())
		ctx = context.WithValue(ctx, SpanKey, span)

		args := []any{"name", name}
		if parent != "" {
			args = append(args, "parent", string(parent))
		}
		logger.DebugContext(ctx, "span", args...)

		return ctx, span
	}
}
