package schedule

import (
	"errors"
	"fmt"
	"time"

	"lass/internal/model"
)

var (
	// ErrInvalidWindow reports a schedule window whose start is after its finish.
	ErrInvalidWindow = errors.New("schedule window starts after it finishes")
	// ErrOverlapDetected reports timeslots that overlap, which upstream data must never contain.
	ErrOverlapDetected = errors.New("overlapping timeslots")
	// ErrPartitioningUnsound reports a timeslot that does not finish on a row boundary.
	ErrPartitioningUnsound = errors.New("schedule partitioning unsound")
	// ErrEmptyDayList reports a schedule day with no timeslots, meaning filling was skipped.
	ErrEmptyDayList = errors.New("schedule day has no timeslots")
)

// OverlapError describes the negative gap Fill found between its cursor and
// the next timeslot.
type OverlapError struct {
	Gap       time.Duration
	Cursor    time.Time
	NextStart time.Time
	Title     string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: negative gap of %s between %s and %s (next timeslot %q)",
		ErrOverlapDetected, e.Gap, e.Cursor.Format(time.RFC3339), e.NextStart.Format(time.RFC3339), e.Title)
}

func (e *OverlapError) Unwrap() error { return ErrOverlapDetected }

// PartitionError describes a timeslot that ends inside a table row.
type PartitionError struct {
	Slot     *model.Timeslot
	Row      int
	RowStart time.Time
	Finish   time.Time
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("%s: timeslot %d (%q) finishes at %s before row %d starting %s",
		ErrPartitioningUnsound, e.Slot.ID, e.Slot.Title(),
		e.Finish.Format(time.RFC3339), e.Row, e.RowStart.Format(time.RFC3339))
}

func (e *PartitionError) Unwrap() error { return ErrPartitioningUnsound }

// EmptyDayError reports the end of a schedule day reached with no timeslots.
type EmptyDayError struct {
	DayFinish time.Time
	DaysDone  int
}

func (e *EmptyDayError) Error() string {
	return fmt.Sprintf("%s: day ending %s after %d complete days, is filler working?",
		ErrEmptyDayList, e.DayFinish.Format(time.RFC3339), e.DaysDone)
}

func (e *EmptyDayError) Unwrap() error { return ErrEmptyDayList }
