package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lass/internal/model"
)

const timeslotSelect = `SELECT ts.id, ts.season_id, se.show_id, ts.start, ts.finish, st.collapsible
FROM timeslot ts
JOIN season se ON se.id = ts.season_id
JOIN show sh ON sh.id = se.show_id
JOIN show_type st ON st.id = sh.show_type_id
WHERE st.public = 1`

// TimeslotsBetween returns public timeslots overlapping [start, finish),
// ordered by start.
func (s *Store) TimeslotsBetween(ctx context.Context, start, finish time.Time) ([]*model.Timeslot, error) {
	return s.queryTimeslots(ctx,
		timeslotSelect+" AND ts.start < ? AND ts.finish > ? ORDER BY ts.start, ts.id",
		formatTime(finish), formatTime(start))
}

// NextTimeslots returns up to count public timeslots that have not finished
// at from, ordered by start.
func (s *Store) NextTimeslots(ctx context.Context, from time.Time, count int) ([]*model.Timeslot, error) {
	if count <= 0 {
		return nil, nil
	}
	return s.queryTimeslots(ctx,
		timeslotSelect+" AND ts.finish > ? ORDER BY ts.start, ts.id LIMIT ?",
		formatTime(from), count)
}

func (s *Store) queryTimeslots(ctx context.Context, query string, args ...any) ([]*model.Timeslot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query timeslots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Timeslot
	for rows.Next() {
		var (
			slot                model.Timeslot
			startRaw, finishRaw string
			collapsible         int
		)
		if err := rows.Scan(&slot.ID, &slot.SeasonID, &slot.ShowID, &startRaw, &finishRaw, &collapsible); err != nil {
			return nil, fmt.Errorf("scan timeslot: %w", err)
		}
		start, err := parseTime(startRaw)
		if err != nil {
			return nil, err
		}
		finish, err := parseTime(finishRaw)
		if err != nil {
			return nil, err
		}
		slot.Start = start
		slot.Duration = finish.Sub(start)
		slot.Collapsible = collapsible != 0
		slots = append(slots, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeslots: %w", err)
	}
	return slots, nil
}

// TermOn returns the latest term starting at or before at, or nil when the
// calendar holds none.
func (s *Store) TermOn(ctx context.Context, at time.Time) (*model.Term, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, start, finish FROM term WHERE start <= ? ORDER BY start DESC LIMIT 1",
		formatTime(at))

	var (
		term                model.Term
		startRaw, finishRaw string
	)
	if err := row.Scan(&term.ID, &term.Name, &startRaw, &finishRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query term: %w", err)
	}
	var err error
	if term.Start, err = parseTime(startRaw); err != nil {
		return nil, err
	}
	if term.Finish, err = parseTime(finishRaw); err != nil {
		return nil, err
	}
	return &term, nil
}
