package schedule

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"time"

	"lass/internal/config"
	"lass/internal/credits"
	"lass/internal/logging"
	"lass/internal/metadata"
	"lass/internal/model"
	"lass/internal/timectx"
)

var (
	timeslotTextKeys = []string{"title"}
	showTextKeys     = []string{"title", "description", "tags"}
	showImageKeys    = []string{"thumbnail_image", "player_image"}
)

// Source fetches raw, unannotated timeslots in start order.
type Source interface {
	// TimeslotsBetween returns timeslots on air at any point in
	// [start, finish), including ones that begin before start.
	TimeslotsBetween(ctx context.Context, start, finish time.Time) ([]*model.Timeslot, error)
	// NextTimeslots returns up to count timeslots not yet finished at from.
	NextTimeslots(ctx context.Context, from time.Time, count int) ([]*model.Timeslot, error)
}

// Deps bundles what an Assembler reads from.
type Deps struct {
	Timeslots Source
	Metadata  metadata.RowSource
	Credits   credits.RowSource
	Blocks    config.BlockConfig
	Filler    config.FillerConfig
	Time      *timectx.Context
	Logger    *slog.Logger
}

// Assembler turns raw timeslots into annotated, gap-free schedules.
type Assembler struct {
	source  Source
	meta    metadata.RowSource
	credits credits.RowSource
	blocks  *BlockAnnotator
	filler  FillerFactory
	tc      *timectx.Context
	logger  *slog.Logger
}

// NewAssembler validates deps and compiles the block rules.
func NewAssembler(deps Deps) (*Assembler, error) {
	switch {
	case deps.Timeslots == nil:
		return nil, errors.New("schedule assembler requires a timeslot source")
	case deps.Metadata == nil:
		return nil, errors.New("schedule assembler requires a metadata source")
	case deps.Credits == nil:
		return nil, errors.New("schedule assembler requires a credit source")
	case deps.Time == nil:
		return nil, errors.New("schedule assembler requires a time context")
	}
	logger := logging.NewComponentLogger(deps.Logger, "schedule")
	blocks, err := NewBlockAnnotator(deps.Blocks, deps.Time, logger)
	if err != nil {
		return nil, fmt.Errorf("compile block rules: %w", err)
	}
	return &Assembler{
		source:  deps.Timeslots,
		meta:    deps.Metadata,
		credits: deps.Credits,
		blocks:  blocks,
		filler:  FillerFromConfig(deps.Filler, blocks),
		tc:      deps.Time,
		logger:  logger,
	}, nil
}

// Blocks returns the assembler's block annotator.
func (a *Assembler) Blocks() *BlockAnnotator {
	return a.blocks
}

// Annotate resolves each timeslot's title and its show's text, image,
// credits and by-line, then assigns blocks. Timeslot text comes before the
// show's text for the same key. Slots must be in start order.
func (a *Assembler) Annotate(ctx context.Context, slots []*model.Timeslot) error {
	if len(slots) == 0 {
		return nil
	}
	at := a.tc.Now()
	logger := logging.WithContext(ctx, a.logger)
	metaResolver := metadata.NewResolver(a.meta, logger)
	creditResolver := credits.NewResolver(a.credits, logger)

	subjects := make([]model.Subject, 0, len(slots))
	var shows []model.Subject
	seenShows := make(map[int64]struct{})
	for _, slot := range slots {
		subjects = append(subjects, slot)
		if _, seen := seenShows[slot.ShowID]; !seen {
			seenShows[slot.ShowID] = struct{}{}
			shows = append(shows, slot.ShowRef())
		}
	}

	titles, err := metaResolver.Resolve(ctx, subjects, model.StrandText, timeslotTextKeys, at)
	if err != nil {
		return fmt.Errorf("resolve timeslot titles: %w", err)
	}
	showText, err := metaResolver.Resolve(ctx, shows, model.StrandText, showTextKeys, at)
	if err != nil {
		return fmt.Errorf("resolve show text: %w", err)
	}
	showImage, err := metaResolver.Resolve(ctx, shows, model.StrandImage, showImageKeys, at)
	if err != nil {
		return fmt.Errorf("resolve show images: %w", err)
	}
	showCredits, err := creditResolver.Resolve(ctx, shows, nil, at)
	if err != nil {
		return fmt.Errorf("resolve show credits: %w", err)
	}

	bylines := make(map[int64][]model.Credited, len(showCredits))
	for id, byType := range showCredits {
		bylines[id] = credits.Byline(byType)
	}

	for _, slot := range slots {
		slot.Text = titles[slot.ID]
		slot.AppendMetadata(model.StrandText, showText[slot.ShowID])
		slot.Image = maps.Clone(showImage[slot.ShowID])
		slot.Credits = showCredits[slot.ShowID]
		slot.Byline = bylines[slot.ShowID]
	}
	a.blocks.Annotate(slots)

	hits, misses := metaResolver.Cache().Stats()
	logger.Debug("timeslots annotated",
		logging.Int("timeslots", len(slots)),
		logging.Int("shows", len(shows)),
		logging.Int("cache_hits", hits),
		logging.Int("cache_misses", misses),
	)
	return nil
}

// Process annotates slots and fills gaps so the result covers at least
// [start, finish). The window widens to take in every slot.
func (a *Assembler) Process(ctx context.Context, slots []*model.Timeslot, start, finish time.Time) ([]*model.Timeslot, error) {
	if len(slots) > 0 {
		if err := a.Annotate(ctx, slots); err != nil {
			return nil, err
		}
		start = earlier(slots[0].Start, start)
		finish = later(slots[len(slots)-1].Finish(), finish)
	}
	return Fill(slots, a.filler, start, finish)
}

// Next returns up to count annotated timeslots, starting with the one on air
// now. Gaps are not filled.
func (a *Assembler) Next(ctx context.Context, count int) ([]*model.Timeslot, error) {
	if count <= 0 {
		return nil, nil
	}
	slots, err := a.source.NextTimeslots(ctx, a.tc.Now(), count)
	if err != nil {
		return nil, fmt.Errorf("fetch next timeslots: %w", err)
	}
	if err := a.Annotate(ctx, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Window returns a lazily assembled schedule for [start, finish).
func (a *Assembler) Window(start, finish time.Time) (*Schedule, error) {
	if start.After(finish) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidWindow, start.Format(time.RFC3339), finish.Format(time.RFC3339))
	}
	return &Schedule{asm: a, start: start, finish: finish}, nil
}

// Upcoming returns the schedule for the day from now.
func (a *Assembler) Upcoming() *Schedule {
	start := a.tc.Now()
	return &Schedule{asm: a, start: start, finish: start.Add(day)}
}

// Day returns the schedule for one schedule day, from its start hour to the
// next day's.
func (a *Assembler) Day(date timectx.Date) *Schedule {
	return a.days(date, 1)
}

// Week returns the seven schedule days beginning on date.
func (a *Assembler) Week(date timectx.Date) *Schedule {
	return a.days(date, 7)
}

func (a *Assembler) days(date timectx.Date, n int) *Schedule {
	return &Schedule{asm: a, start: a.tc.StartOn(date), finish: a.tc.StartOn(date.AddDays(n))}
}

// Schedule assembles its timeslots on first use and keeps them.
type Schedule struct {
	asm    *Assembler
	start  time.Time
	finish time.Time

	slots  []*model.Timeslot
	loaded bool
}

// Start returns the instant the schedule window opens.
func (s *Schedule) Start() time.Time { return s.start }

// Finish returns the instant the schedule window closes.
func (s *Schedule) Finish() time.Time { return s.finish }

// Timeslots returns the filled, annotated timeslots of the schedule.
func (s *Schedule) Timeslots(ctx context.Context) ([]*model.Timeslot, error) {
	if s.loaded {
		return s.slots, nil
	}
	ctx, _ = logging.EnsureRequestID(ctx)
	logger := logging.WithContext(ctx, s.asm.logger)

	raw, err := s.asm.source.TimeslotsBetween(ctx, s.start, s.finish)
	if err != nil {
		return nil, fmt.Errorf("fetch timeslots: %w", err)
	}
	slots, err := s.asm.Process(ctx, raw, s.start, s.finish)
	if err != nil {
		return nil, err
	}

	logger.Debug("schedule assembled",
		logging.Time(logging.FieldWindowStart, s.start),
		logging.Time(logging.FieldWindowFinish, s.finish),
		logging.Int("timeslots", len(raw)),
		logging.Int("filled", len(slots)-len(raw)),
	)
	s.slots, s.loaded = slots, true
	return slots, nil
}

// Table tabulates the schedule, which should span about a week.
func (s *Schedule) Table(ctx context.Context) ([]Row, error) {
	slots, err := s.Timeslots(ctx)
	if err != nil {
		return nil, err
	}
	return Tabulate(s.start, slots, s.asm.tc)
}

// Days yields each local calendar date from the start date up to, but not
// including, the finish date.
func (s *Schedule) Days() iter.Seq[timectx.Date] {
	first := timectx.DateOf(s.asm.tc.Localize(s.start))
	last := timectx.DateOf(s.asm.tc.Localize(s.finish))
	return func(yield func(timectx.Date) bool) {
		for d := first; d.Before(last); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}
