// Package logging builds the slog loggers lass writes through.
//
// Console output puts one record on each line, with the component and the
// metadata subject in front of the message. JSON output suits log shipping.
// Event tags debug and warning lines with an event type so degraded lookups
// can be filtered, and EnsureRequestID ties together the lines of a single
// schedule assembly.
package logging
