package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "folio"

// StartSectionSpan starts a span for a section operation such as
// "section.update".
func StartSectionSpan(ctx context.Context, op, pageKey, sectionKey string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, op,
		trace.WithAttributes(
			attribute.String("section.page_key", pageKey),
			attribute.String("section.key", sectionKey),
		),
	)
}

// StartTemplateSpan starts a span for instantiating a template.
func StartTemplateSpan(ctx context.Context, templateID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "template.instantiate",
		trace.WithAttributes(attribute.String("template.id", templateID)),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
