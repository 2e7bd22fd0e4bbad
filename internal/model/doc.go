// Package model defines the subjects and records schedule assembly reads:
// shows, seasons, timeslots, metadata items, packages, and credits.
//
// Shared behaviour is composed rather than inherited. Temporally scoped
// records embed transient.Span, owned records embed Ownership, and which
// strands or credits a subject kind carries is declared up front in the
// Capabilities table.
package model
