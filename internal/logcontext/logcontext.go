package logcontext

import (
	"context"
	"log/slog"
)

type ctxKey string

const slogFields ctxKey = "slog_fields"

// ContextHandler lifts attributes stored in the context into every record.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		for _, attr := range attrs {
			r.AddAttrs(attr)
		}
	}
	return h.Handler.Handle(ctx, r)
}

// AppendCtx returns a context carrying the parent's attributes plus attr.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if attrs, ok := parent.Value(slogFields).([]slog.Attr); ok {
		copied := make([]slog.Attr, len(attrs), len(attrs)+1)
		copy(copied, attrs)
		return context.WithValue(parent, slogFields, append(copied, attr))
	}

	return context.WithValue(parent, slogFields, []slog.Attr{attr})
}

// Attrs returns the attributes accumulated on ctx, if any.
func Attrs(ctx context.Context) []slog.Attr {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		return attrs
	}
	return nil
}
