// Package service works out what kind of output the station is providing:
// scheduled programming, sustainer music, emergency programming, or nothing.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lass/internal/config"
	"lass/internal/logging"
	"lass/internal/model"
)

// Type is the kind of service the station provides.
type Type string

const (
	// Normal means scheduled programming is on air.
	Normal Type = "normal"
	// Sustainer means the station broadcasts but airs no programmes.
	Sustainer Type = "sustainer"
	// Emergency means emergency programming is on air.
	Emergency Type = "emergency"
	// Down means the station is not transmitting.
	Down Type = "down"
)

// ParseType validates a service type name.
func ParseType(value string) (Type, bool) {
	switch t := Type(value); t {
	case Normal, Sustainer, Emergency, Down:
		return t, true
	}
	return "", false
}

// CanListen reports whether listeners can tune in.
func (t Type) CanListen() bool {
	return t != Down
}

// ProgrammingAvailable reports whether scheduled programming is on air.
func (t Type) ProgrammingAvailable() bool {
	return t == Normal
}

// TypeAt derives the service type at an instant from the latest term that
// started by then. A nil term means the term calendar has not been kept up
// to date, and the station is treated as down.
func TypeAt(at time.Time, term *model.Term) Type {
	switch {
	case term == nil:
		return Down
	case term.Finish.After(at):
		return Normal
	case term.IsSummer():
		return Down
	default:
		return Sustainer
	}
}

// TermSource finds the latest term starting at or before an instant.
type TermSource interface {
	TermOn(ctx context.Context, at time.Time) (*model.Term, error)
}

// Status is the station's service state at an instant.
type Status struct {
	At          time.Time   `json:"at"`
	Type        Type        `json:"type"`
	Term        *model.Term `json:"term,omitempty"`
	Overridden  bool        `json:"overridden"`
	Maintenance string      `json:"maintenance,omitempty"`
}

// Inspector reports service status using the term calendar and the
// configured manual override.
type Inspector struct {
	terms  TermSource
	cfg    config.Service
	now    func() time.Time
	logger *slog.Logger
}

func NewInspector(terms TermSource, cfg config.Service, now func() time.Time, logger *slog.Logger) *Inspector {
	if now == nil {
		now = time.Now
	}
	return &Inspector{
		terms:  terms,
		cfg:    cfg,
		now:    now,
		logger: logging.NewComponentLogger(logger, "service"),
	}
}

// Current returns the status now. A valid manual override takes precedence
// over the term calendar, and the maintenance notice is included when active.
func (i *Inspector) Current(ctx context.Context) (Status, error) {
	status, err := i.status(ctx, i.now())
	if err != nil {
		return Status{}, err
	}
	if override, ok := ParseType(i.cfg.Override); ok {
		status.Type = override
		status.Overridden = true
	} else if i.cfg.Override != "" {
		logging.Event("service_override_invalid").Warn(i.logger, "ignoring unknown service override",
			"set service.override to normal, sustainer, emergency or down",
			"service type derived from the term calendar",
			logging.String("override", i.cfg.Override),
		)
	}
	if i.cfg.Maintenance.Active {
		status.Maintenance = i.cfg.Maintenance.Message
	}
	return status, nil
}

// At returns the expected status at an instant from the term calendar alone.
// Overrides and maintenance notices have no history, so they are not applied.
func (i *Inspector) At(ctx context.Context, at time.Time) (Status, error) {
	return i.status(ctx, at)
}

func (i *Inspector) status(ctx context.Context, at time.Time) (Status, error) {
	term, err := i.terms.TermOn(ctx, at)
	if err != nil {
		return Status{}, fmt.Errorf("find term at %s: %w", at.Format(time.RFC3339), err)
	}
	if term == nil {
		logging.Event("service_no_term").Debug(i.logger, "no term on record", logging.Time("at", at))
	}
	return Status{At: at, Type: TypeAt(at, term), Term: term}, nil
}
