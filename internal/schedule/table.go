package schedule

import (
	"slices"
	"time"

	"lass/internal/model"
	"lass/internal/timectx"
)

const (
	day      = 24 * time.Hour
	weekDays = 7
)

// Cell is a timeslot placed in the schedule table. Rows is the number of
// consecutive table rows it spans, starting at the row holding the cell.
type Cell struct {
	Slot *model.Timeslot `json:"timeslot"`
	Rows int             `json:"rows"`
}

// Row is one line of the weekly schedule table. Start is the row's local
// start time on the first day; Days holds one column for each of the seven
// schedule days, with nil where a cell from an earlier row continues or
// nothing starts.
type Row struct {
	Start time.Time `json:"start"`
	Days  []*Cell   `json:"days"`
}

// Tabulate arranges a filled, block-annotated week of timeslots into rows.
// Non-collapsible timeslots split the table at their boundaries and at every
// hour they cover; collapsible ones span however many rows fall inside them.
func Tabulate(weekStart time.Time, slots []*model.Timeslot, tc *timectx.Context) ([]Row, error) {
	start := tc.Localize(weekStart)

	days, partitions, err := splitDays(start, slots, tc)
	if err != nil {
		return nil, err
	}
	rows := emptyTable(start, partitions, weekDays, tc)
	if err := populateTable(rows, days, tc); err != nil {
		return nil, err
	}
	return rows, nil
}

// splitDays divides slots into one list per schedule day and collects row
// boundaries as local offsets from the start of a day. A timeslot crossing
// the end of a day also heads the next day's list, and splits that day's
// rows too. Days wholly covered by the last timeslot still get a list, but
// a timeslot running past the end of the week stays in the last day's list
// and timeslots starting after the week are dropped.
func splitDays(start time.Time, slots []*model.Timeslot, tc *timectx.Context) ([][]*model.Timeslot, map[time.Duration]struct{}, error) {
	var done [][]*model.Timeslot
	var current []*model.Timeslot
	partitions := map[time.Duration]struct{}{0: {}, day: {}}

	dayStart := start
	dayFinish := tc.ShiftLocal(dayStart, day)
	weekFinish := tc.ShiftLocal(start, weekDays*day)

	advance := func() error {
		if len(current) == 0 {
			return &EmptyDayError{DayFinish: tc.Localize(dayFinish), DaysDone: len(done)}
		}
		done = append(done, current)
		last := current[len(current)-1]
		current = nil
		dayStart, dayFinish = dayFinish, tc.ShiftLocal(dayFinish, day)
		if last.Finish().After(dayStart) {
			current = []*model.Timeslot{last}
			if !last.Collapsible {
				addPartitions(partitions, tc, dayStart, dayFinish, last.Start, last.Finish())
			}
		}
		return nil
	}

	for _, slot := range slots {
		if !slot.Start.Before(weekFinish) {
			break
		}
		for !dayFinish.After(slot.Start) {
			if err := advance(); err != nil {
				return nil, nil, err
			}
		}
		current = append(current, slot)
		if !slot.Collapsible {
			addPartitions(partitions, tc, dayStart, dayFinish, slot.Start, slot.Finish())
		}
	}
	for len(current) > 0 && dayFinish.Before(weekFinish) && current[len(current)-1].Finish().After(dayFinish) {
		if err := advance(); err != nil {
			return nil, nil, err
		}
	}
	done = append(done, current)
	return done, partitions, nil
}

// addPartitions records the clipped start and finish offsets of a slot within
// its day and each whole hour strictly between them.
func addPartitions(partitions map[time.Duration]struct{}, tc *timectx.Context, dayStart, dayFinish, slotStart, slotFinish time.Time) {
	startOffset := tc.WallOffset(dayStart, later(dayStart, slotStart))
	finishOffset := tc.WallOffset(dayStart, earlier(dayFinish, slotFinish))

	partitions[startOffset] = struct{}{}
	partitions[finishOffset] = struct{}{}

	for hour := startOffset.Truncate(time.Hour) + time.Hour; hour < finishOffset; hour += time.Hour {
		partitions[hour] = struct{}{}
	}
}

// emptyTable creates a row for every partition except the end of the day.
func emptyTable(start time.Time, partitions map[time.Duration]struct{}, columns int, tc *timectx.Context) []Row {
	offsets := make([]time.Duration, 0, len(partitions))
	for offset := range partitions {
		offsets = append(offsets, offset)
	}
	slices.Sort(offsets)
	if len(offsets) > 0 {
		offsets = offsets[:len(offsets)-1]
	}

	rows := make([]Row, 0, len(offsets))
	for _, offset := range offsets {
		rows = append(rows, Row{
			Start: tc.ShiftLocal(start, offset),
			Days:  make([]*Cell, columns),
		})
	}
	return rows
}

// populateTable places each day's slots at the row they start on. Every
// slot must finish exactly on a row boundary unless it runs past the last row.
func populateTable(rows []Row, days [][]*model.Timeslot, tc *timectx.Context) error {
	for col, daySlots := range days {
		rowStart := func(i int) time.Time {
			return tc.ShiftLocal(rows[i].Start, time.Duration(col)*day)
		}

		current := 0
		for _, slot := range daySlots {
			first := current
			finish := slot.Finish()

			for current < len(rows) && rowStart(current).Before(finish) {
				current++
			}
			if current < len(rows) && rowStart(current).After(finish) {
				return &PartitionError{
					Slot:     slot,
					Row:      current,
					RowStart: tc.Localize(rowStart(current)),
					Finish:   tc.Localize(finish),
				}
			}

			if span := current - first; span > 0 {
				rows[first].Days[col] = &Cell{Slot: slot, Rows: span}
			}
		}
	}
	return nil
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
