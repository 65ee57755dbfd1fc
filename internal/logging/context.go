package logging

import (
	"context"
	"log/slog"

	"av1janitor/internal/services"
)

// Standardized attribute keys. Call sites use these constants so log
// queries can rely on stable field names.
const (
	FieldComponent     = "component"
	FieldJobID         = "job_id"
	FieldSource        = "source"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldDecisionType  = "decision_type"
	FieldAlert         = "alert"
)

// ContextFields extracts the standard request-scoped attributes carried
// on ctx. Missing values are omitted.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	attrs := make([]Attr, 0, 3)
	if jobID, ok := services.JobIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldJobID, jobID))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if requestID, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldCorrelationID, requestID))
	}
	return attrs
}

// WithContext returns a logger annotated with the standard attributes
// found on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
