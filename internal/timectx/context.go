// Package timectx supplies the local-time services the schedule needs.
//
// The station works in a single configured timezone and its broadcast day
// starts at a configurable local hour rather than midnight, so an instant
// shortly after midnight usually belongs to the previous schedule day. All
// wall-clock arithmetic here is DST aware: shifting midnight by four local
// hours across a clock change still lands on 04:00 local.
package timectx

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"lass/internal/config"
)

// Context is the zone and schedule-day configuration local operations run in.
type Context struct {
	loc             *time.Location
	startHour       int
	secondYearTerms map[string]struct{}

	// Now returns the current instant; tests replace it.
	Now func() time.Time
}

// New builds a Context for the named Olson timezone.
func New(timezone string, scheduleStartHour int, secondYearTerms []string) (*Context, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(timezone))
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if scheduleStartHour < 0 || scheduleStartHour > 23 {
		return nil, fmt.Errorf("schedule start hour %d out of range 0-23", scheduleStartHour)
	}
	terms := make(map[string]struct{}, len(secondYearTerms))
	for _, name := range secondYearTerms {
		terms[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return &Context{
		loc:             loc,
		startHour:       scheduleStartHour,
		secondYearTerms: terms,
		Now:             time.Now,
	}, nil
}

// FromConfig builds a Context from the [time] configuration section.
func FromConfig(cfg config.Time) (*Context, error) {
	return New(cfg.Timezone, cfg.ScheduleStartHour, cfg.SecondYearTerms)
}

// Location returns the local timezone.
func (c *Context) Location() *time.Location {
	return c.loc
}

// Localize converts t to local time.
func (c *Context) Localize(t time.Time) time.Time {
	return t.In(c.loc)
}

// LocalNow returns the current instant in local time.
func (c *Context) LocalNow() time.Time {
	return c.Localize(c.Now())
}

// ShiftLocal moves t by d of local wall-clock time. Across a DST change the
// elapsed real time differs from d.
func (c *Context) ShiftLocal(t time.Time, d time.Duration) time.Time {
	naive := wallClock(t.In(c.loc)).Add(d)
	return time.Date(naive.Year(), naive.Month(), naive.Day(), naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), c.loc)
}

// WallOffset returns the local wall-clock time between from and to. It is
// the inverse of ShiftLocal: ShiftLocal(from, WallOffset(from, to)) == to.
func (c *Context) WallOffset(from, to time.Time) time.Duration {
	return wallClock(to.In(c.loc)).Sub(wallClock(from.In(c.loc)))
}

func wallClock(l time.Time) time.Time {
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}

// CombineAsLocal interprets hour:minute on date d as local time.
func (c *Context) CombineAsLocal(d Date, hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, c.loc)
}

// StartOn returns the instant the schedule day for d begins.
func (c *Context) StartOn(d Date) time.Time {
	return c.CombineAsLocal(d, c.startHour, 0)
}

// LocalMidnightOn returns local midnight at the start of d.
func (c *Context) LocalMidnightOn(d Date) time.Time {
	return c.CombineAsLocal(d, 0, 0)
}

// ScheduleDateOf returns the schedule day t falls in, which is the previous
// calendar day when t is before the local schedule start hour.
func (c *Context) ScheduleDateOf(t time.Time) Date {
	local := c.Localize(t)
	date := DateOf(local)
	if local.Before(c.StartOn(date)) {
		return date.AddDays(-1)
	}
	return date
}

// AcademicYear returns the academic year a term named termName in
// calendarYear belongs to. Terms listed as second-year terms run in the
// calendar year after their academic year began.
func (c *Context) AcademicYear(termName string, calendarYear int) int {
	if _, ok := c.secondYearTerms[strings.ToLower(strings.TrimSpace(termName))]; ok {
		return calendarYear - 1
	}
	return calendarYear
}
