package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// lineHandler writes each record as one line:
//
//	2024-01-08 07:00:00 INF schedule Show #12: message key=value ...
//
// The component, subject and correlation id are lifted out of the fields.
type lineHandler struct {
	out    *lockedWriter
	level  slog.Leveler
	source bool
	prefix string
	fields []field
}

type field struct {
	key   string
	value slog.Value
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(line []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.w.Write(line)
	return err
}

func newLineHandler(w io.Writer, level slog.Leveler, source bool) *lineHandler {
	return &lineHandler{out: &lockedWriter{w: w}, level: level, source: source}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = slices.Clone(h.fields)
	for _, attr := range attrs {
		next.fields = addField(next.fields, h.prefix, attr)
	}
	return &next
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *lineHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.fields)
	record.Attrs(func(attr slog.Attr) bool {
		fields = addField(fields, h.prefix, attr)
		return true
	})

	var component, correlation, kind, id string
	rest := make([]field, 0, len(fields))
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = f.value.String()
		case FieldCorrelationID:
			correlation = f.value.String()
		case FieldSubjectKind:
			kind = f.value.String()
		case FieldSubjectID:
			id = f.value.String()
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteByte(' ')
	b.WriteString(levelTag(record.Level))
	if component != "" {
		b.WriteByte(' ')
		b.WriteString(component)
	}
	if subject := FormatSubject(kind, id); subject != "" {
		b.WriteByte(' ')
		b.WriteString(subject)
	}
	b.WriteString(": ")
	b.WriteString(msg)
	for _, f := range rest {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(formatValue(f.value))
	}
	if correlation != "" {
		b.WriteString(" req=")
		b.WriteString(correlation[:min(8, len(correlation))])
	}
	if h.source {
		if src := record.Source(); src != nil {
			b.WriteString(" (")
			b.WriteString(filepath.Base(src.File))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(src.Line))
			b.WriteByte(')')
		}
	}
	b.WriteByte('\n')
	return h.out.write([]byte(b.String()))
}

// addField appends attr under prefix, flattening groups into dotted keys.
// A repeated key keeps its first position and takes the latest value.
func addField(fields []field, prefix string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			fields = addField(fields, prefix, member)
		}
		return fields
	}
	if attr.Key == "" {
		return fields
	}
	key := prefix + attr.Key
	if i := slices.IndexFunc(fields, func(f field) bool { return f.key == key }); i >= 0 {
		fields[i].value = attr.Value
		return fields
	}
	return append(fields, field{key: key, value: attr.Value})
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		// Offsets stay visible so DST edges can be read off the log.
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if values, ok := v.Any().([]string); ok {
			return "[" + strings.Join(values, ",") + "]"
		}
	}
	s := v.String()
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERR"
	case level >= slog.LevelWarn:
		return "WRN"
	case level >= slog.LevelInfo:
		return "INF"
	default:
		return "DBG"
	}
}

// FormatSubject renders a subject kind and id as "Show #12".
func FormatSubject(kind, id string) string {
	kind = strings.TrimSpace(kind)
	id = strings.TrimSpace(id)
	if kind != "" {
		kind = strings.ToUpper(kind[:1]) + strings.ToLower(kind[1:])
	}
	switch {
	case kind != "" && id != "":
		return kind + " #" + id
	case id != "":
		return "#" + id
	default:
		return kind
	}
}
