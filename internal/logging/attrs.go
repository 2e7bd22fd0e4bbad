package logging

import (
	"log/slog"
	"time"
)

type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Time(key string, value time.Time) Attr { return slog.Time(key, value) }

// Subject tags a log line with the metadata subject it concerns. The console
// handler lifts it into the line prefix as "Show #12".
func Subject(kind string, id int64) Attr {
	return slog.Group("", slog.String(FieldSubjectKind, kind), slog.Int64(FieldSubjectID, id))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger becomes
// a no-op logger first.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}
