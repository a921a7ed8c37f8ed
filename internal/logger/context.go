package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sectionRefKey
)

type sectionRef struct{ pageKey, sectionKey string }

// WithRequestID returns a new context with the given request ID stored.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the request ID from the context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithSection tags ctx with the section being worked on. Records logged
// with the context carry page_key and section_key.
func WithSection(ctx context.Context, pageKey, sectionKey string) context.Context {
	return context.WithValue(ctx, sectionRefKey, sectionRef{pageKey, sectionKey})
}

// contextAttrs lists the log attributes carried by ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if ref, ok := ctx.Value(sectionRefKey).(sectionRef); ok {
		attrs = append(attrs, slog.String("page_key", ref.pageKey), slog.String("section_key", ref.sectionKey))
	}
	return attrs
}
