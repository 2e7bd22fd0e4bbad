package timectx

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

func (d Date) noon() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Weekday returns the day of the week d falls on.
func (d Date) Weekday() time.Weekday {
	return d.noon().Weekday()
}

// MondayOf returns the Monday on or before d.
func (d Date) MondayOf() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.noon().Before(other.noon())
}

// DaysUntil returns the number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.noon().Sub(d.noon()) / (24 * time.Hour))
}

func (d Date) String() string {
	return d.noon().Format(dateLayout)
}

// ISOYearStart returns the Monday that begins ISO year isoYear.
func ISOYearStart(isoYear int) Date {
	fourthJan := Date{Year: isoYear, Month: time.January, Day: 4}
	isoWeekday := (int(fourthJan.Weekday())+6)%7 + 1
	return fourthJan.AddDays(-(isoWeekday - 1))
}

// ISOToGregorian converts an ISO year/week/day triple to a calendar date.
func ISOToGregorian(isoYear, isoWeek, isoDay int) (Date, error) {
	if isoDay < 1 || isoDay > 7 {
		return Date{}, fmt.Errorf("iso day %d out of range 1-7", isoDay)
	}
	weeks := isoWeeksIn(isoYear)
	if isoWeek < 1 || isoWeek > weeks {
		return Date{}, fmt.Errorf("iso week %d out of range 1-%d for %d", isoWeek, weeks, isoYear)
	}
	return ISOYearStart(isoYear).AddDays((isoWeek-1)*7 + isoDay - 1), nil
}

func isoWeeksIn(isoYear int) int {
	return ISOYearStart(isoYear).DaysUntil(ISOYearStart(isoYear+1)) / 7
}
