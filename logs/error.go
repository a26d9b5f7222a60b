package logs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// WrapSpan annotates err with the span and attributes of ctx, so a failure printed
// outside the log can be matched to its records.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	span, _ := ctx.Value(SpanKey).(Span)
	attrs := contextAttrs(ctx)
	if span == "" && len(attrs) == 0 {
		return err
	}
	var b strings.Builder
	if span != "" {
		fmt.Fprintf(&b, "span: %s", span)
	}
	for _, attr := range attrs {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(attr.String())
	}
	return errors.Join(err, errors.New(b.String()))
}
