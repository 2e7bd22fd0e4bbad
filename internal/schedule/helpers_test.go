package schedule_test

import (
	"testing"
	"time"

	"lass/internal/model"
	"lass/internal/timectx"
)

func newContext(t *testing.T, zone string, startHour int) *timectx.Context {
	t.Helper()
	tc, err := timectx.New(zone, startHour, nil)
	if err != nil {
		t.Fatalf("new time context: %v", err)
	}
	return tc
}

func utc(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func show(id int64, title string, start time.Time, duration time.Duration) *model.Timeslot {
	return &model.Timeslot{
		ID:       id,
		ShowID:   id * 10,
		Start:    start,
		Duration: duration,
		Text:     model.Values{"title": {title}},
	}
}

func plainFiller(start time.Time, duration time.Duration) *model.Timeslot {
	return &model.Timeslot{Start: start, Duration: duration, Filler: true, Collapsible: true}
}

// assertCovers fails unless slots run back to back from start to finish.
func assertCovers(t *testing.T, slots []*model.Timeslot, start, finish time.Time) {
	t.Helper()
	cursor := start
	for i, slot := range slots {
		if !slot.Start.Equal(cursor) {
			t.Fatalf("slot %d starts at %s, want %s", i, slot.Start, cursor)
		}
		cursor = slot.Finish()
	}
	if !cursor.Equal(finish) {
		t.Fatalf("slots finish at %s, want %s", cursor, finish)
	}
}
