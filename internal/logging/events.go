package logging

import (
	"context"
	"log/slog"
)

// Event classifies a log line under FieldEventType.
type Event string

// Debug records a lookup that quietly resolved to nothing, such as an
// unknown strand or a block name with no definition.
func (e Event) Debug(logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, msg, e.tag(attrs)...)
}

// Warn records a problem the operator should fix. hint says what to change
// and impact what lass did instead.
func (e Event) Warn(logger *slog.Logger, msg, hint, impact string, attrs ...Attr) {
	if logger == nil {
		return
	}
	tagged := append(e.tag(attrs), slog.String(FieldErrorHint, hint), slog.String(FieldImpact, impact))
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, tagged...)
}

func (e Event) tag(attrs []Attr) []Attr {
	tagged := make([]Attr, 0, len(attrs)+3)
	tagged = append(tagged, slog.String(FieldEventType, string(e)))
	return append(tagged, attrs...)
}
