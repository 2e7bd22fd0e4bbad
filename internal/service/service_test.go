package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lass/internal/config"
	"lass/internal/logging"
	"lass/internal/model"
	"lass/internal/service"
)

func date(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 12, 0, 0, 0, time.UTC)
}

var terms = []model.Term{
	{ID: 1, Name: "Spring", Start: date(time.January, 8), Finish: date(time.March, 15)},
	{ID: 2, Name: "Summer", Start: date(time.April, 15), Finish: date(time.June, 21)},
	{ID: 3, Name: "Autumn", Start: date(time.September, 30), Finish: date(time.December, 6)},
}

type termTable struct{ err error }

func (tt termTable) TermOn(_ context.Context, at time.Time) (*model.Term, error) {
	if tt.err != nil {
		return nil, tt.err
	}
	var latest *model.Term
	for i := range terms {
		if !terms[i].Start.After(at) {
			latest = &terms[i]
		}
	}
	return latest, nil
}

func TestTypeAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want service.Type
	}{
		{name: "before any term", at: date(time.January, 1), want: service.Down},
		{name: "spring term", at: date(time.February, 1), want: service.Normal},
		{name: "easter break", at: date(time.April, 1), want: service.Sustainer},
		{name: "summer term", at: date(time.May, 1), want: service.Normal},
		{name: "summer break", at: date(time.August, 1), want: service.Down},
		{name: "autumn term", at: date(time.October, 1), want: service.Normal},
		{name: "christmas break", at: date(time.December, 20), want: service.Sustainer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, _ := termTable{}.TermOn(context.Background(), tt.at)
			if got := service.TypeAt(tt.at, term); got != tt.want {
				t.Fatalf("unexpected service type: got %s want %s", got, tt.want)
			}
		})
	}
}

func TestCurrentAppliesOverrideAndMaintenance(t *testing.T) {
	now := func() time.Time { return date(time.August, 1) }
	cfg := config.Service{
		Override:    "emergency",
		Maintenance: config.Maintenance{Active: true, Message: "Studio refit"},
	}
	inspector := service.NewInspector(termTable{}, cfg, now, logging.NewNop())

	current, err := inspector.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current.Type != service.Emergency || !current.Overridden || current.Maintenance != "Studio refit" {
		t.Fatalf("unexpected current status: %+v", current)
	}
	if current.Term == nil || current.Term.Name != "Summer" {
		t.Fatalf("unexpected term: %+v", current.Term)
	}

	past, err := inspector.At(context.Background(), date(time.August, 1))
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if past.Type != service.Down || past.Overridden || past.Maintenance != "" {
		t.Fatalf("expected overrides to be ignored for explicit instants, got %+v", past)
	}
}

func TestCurrentIgnoresUnknownOverride(t *testing.T) {
	now := func() time.Time { return date(time.February, 1) }
	inspector := service.NewInspector(termTable{}, config.Service{Override: "party"}, now, logging.NewNop())

	current, err := inspector.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current.Type != service.Normal || current.Overridden {
		t.Fatalf("unexpected status: %+v", current)
	}
}

func TestTermLookupErrorPropagates(t *testing.T) {
	boom := errors.New("no database")
	inspector := service.NewInspector(termTable{err: boom}, config.Service{}, nil, logging.NewNop())
	if _, err := inspector.Current(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped term error, got %v", err)
	}
}

func TestTypePredicates(t *testing.T) {
	if service.Down.CanListen() || !service.Sustainer.CanListen() {
		t.Fatal("unexpected CanListen results")
	}
	if !service.Normal.ProgrammingAvailable() || service.Emergency.ProgrammingAvailable() {
		t.Fatal("unexpected ProgrammingAvailable results")
	}
	if _, ok := service.ParseType("up"); ok {
		t.Fatal("expected unknown service type to be rejected")
	}
}
