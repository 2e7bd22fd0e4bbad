package schedule

import (
	"time"

	"lass/internal/config"
	"lass/internal/model"
)

// FillerFactory builds a synthetic timeslot covering duration from start.
type FillerFactory func(start time.Time, duration time.Duration) *model.Timeslot

// Fill pads slots with filler so the result covers [start, finish) without
// gaps. Slots must be in start order and must not overlap; the input
// timeslots appear in the result unchanged.
func Fill(slots []*model.Timeslot, filler FillerFactory, start, finish time.Time) ([]*model.Timeslot, error) {
	if start.After(finish) {
		return nil, ErrInvalidWindow
	}

	filled := make([]*model.Timeslot, 0, 2*len(slots)+1)
	current := start
	remaining := slots

	for current.Before(finish) {
		var slot *model.Timeslot
		if len(remaining) > 0 {
			slot, remaining = remaining[0], remaining[1:]
		}

		next := finish
		if slot != nil && slot.Start.Before(finish) {
			next = slot.Start
		}

		switch gap := next.Sub(current); {
		case gap < 0:
			overlap := &OverlapError{Gap: gap, Cursor: current, NextStart: next}
			if slot != nil {
				overlap.Title = slot.Title()
			}
			return nil, overlap
		case gap > 0:
			filled = append(filled, filler(current, gap))
			current = next
		}

		if slot != nil {
			filled = append(filled, slot)
			current = slot.Finish()
		}
	}
	return filled, nil
}

// FillerFromConfig returns a factory producing collapsible filler timeslots
// carrying the configured metadata and block.
func FillerFromConfig(cfg config.FillerConfig, blocks *BlockAnnotator) FillerFactory {
	return func(start time.Time, duration time.Duration) *model.Timeslot {
		slot := &model.Timeslot{
			Start:       start,
			Duration:    duration,
			Filler:      true,
			Collapsible: true,
		}
		for strand, values := range cfg.Metadata {
			metadata := make(model.Values, len(values))
			for key, value := range values {
				metadata[key] = []string{value}
			}
			slot.AppendMetadata(strand, metadata)
		}
		switch {
		case cfg.Block == "":
		case blocks != nil:
			slot.Block = blocks.Block(cfg.Block)
		default:
			slot.Block = &model.Block{Name: cfg.Block}
		}
		return slot
	}
}
