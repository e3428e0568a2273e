package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if model := ModelFromContext(ctx); model != "" {
		fields = append(fields, zap.String("fmu.filename", model))
	}

	return fields
}

type modelCtxKey struct{}

// WithModel records the FMU being worked on in ctx.
func WithModel(ctx context.Context, filename string) context.Context {
	return context.WithValue(ctx, modelCtxKey{}, filename)
}

// ModelFromContext returns the FMU recorded by WithModel.
func ModelFromContext(ctx context.Context) string {
	if m, ok := ctx.Value(modelCtxKey{}).(string); ok {
		return m
	}
	return ""
}

type loggerCtxKey struct{}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return Nop()
}
