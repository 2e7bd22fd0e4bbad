// Package transient models the effective-from/effective-to window carried by
// every versioned record in lass (metadata items, credits, package entries).
//
// A Span with no start has never become effective. It is never active and
// never overlaps any range, even when its end is also unset. An unset end
// means the record stays effective indefinitely once started.
package transient

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvertedSpan is returned by Validate when a span finishes before it starts.
var ErrInvertedSpan = errors.New("effective_to precedes effective_from")

// Span is the validity window of a record.
type Span struct {
	From *time.Time `json:"effective_from,omitempty"`
	To   *time.Time `json:"effective_to,omitempty"`
}

// Bounded returns a span effective over [from, to).
func Bounded(from, to time.Time) Span {
	return Span{From: &from, To: &to}
}

// OpenFrom returns a span effective from the given instant with no end.
func OpenFrom(from time.Time) Span {
	return Span{From: &from}
}

// StartedBy reports whether the span had become effective at or before t.
func (s Span) StartedBy(t time.Time) bool {
	return s.From != nil && !s.From.After(t)
}

// NotFinishedBy reports whether the span is still effective at t.
func (s Span) NotFinishedBy(t time.Time) bool {
	return s.To == nil || t.Before(*s.To)
}

// IsActive reports whether the span is in effect at the instant at.
func (s Span) IsActive(at time.Time) bool {
	return s.StartedBy(at) && s.NotFinishedBy(at)
}

// OverlapsRange reports whether the span is in effect at any point of the
// range [start, finish], for subjects such as timeslots that occupy a range
// rather than a point.
func (s Span) OverlapsRange(start, finish time.Time) bool {
	return s.StartedBy(finish) && s.NotFinishedBy(start)
}

// Intersect returns the span during which both s and other are in effect.
// If either has never started, neither has the intersection.
func (s Span) Intersect(other Span) Span {
	var out Span
	if s.From != nil && other.From != nil {
		from := *s.From
		if other.From.After(from) {
			from = *other.From
		}
		out.From = &from
	}
	switch {
	case s.To == nil && other.To != nil:
		to := *other.To
		out.To = &to
	case s.To != nil && other.To == nil:
		to := *s.To
		out.To = &to
	case s.To != nil && other.To != nil:
		to := *s.To
		if other.To.Before(to) {
			to = *other.To
		}
		out.To = &to
	}
	return out
}

// Validate rejects spans whose end precedes their start.
func (s Span) Validate() error {
	if s.From != nil && s.To != nil && s.To.Before(*s.From) {
		return fmt.Errorf("%w: %s > %s", ErrInvertedSpan,
			s.From.UTC().Format(time.RFC3339), s.To.UTC().Format(time.RFC3339))
	}
	return nil
}
