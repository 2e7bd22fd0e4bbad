package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Structured field keys shared across lass.
const (
	FieldComponent     = "component"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldImpact        = "impact"

	FieldSubjectKind = "subject_kind"
	FieldSubjectID   = "subject_id"
	FieldStrand      = "strand"
	FieldCreditType  = "credit_type"

	FieldWindowStart  = "window_start"
	FieldWindowFinish = "window_finish"
)

type correlationKey struct{}

// EnsureRequestID returns ctx carrying a correlation id, minting one when ctx
// has none, so every log line of one schedule assembly can be grouped.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, correlationKey{}, id), id
}

// RequestID returns the correlation id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// WithContext tags logger with the correlation id carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id := RequestID(ctx); id != "" {
		return logger.With(slog.String(FieldCorrelationID, id))
	}
	return logger
}
