package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lass/internal/credits"
	"lass/internal/logging"
	"lass/internal/schedule"
	"lass/internal/testsupport"
	"lass/internal/timectx"
)

func TestStationDayAssembly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStation(t, cfg)

	tc, err := timectx.FromConfig(cfg.Time)
	require.NoError(t, err)
	tc.Now = func() time.Time { return at }

	asm, err := schedule.NewAssembler(schedule.Deps{
		Timeslots: st,
		Metadata:  st,
		Credits:   st,
		Blocks:    cfg.BlockConfig(),
		Filler:    cfg.FillerConfig(),
		Time:      tc,
		Logger:    logging.NewNop(),
	})
	require.NoError(t, err)

	slots, err := asm.Day(timectx.Date{Year: 2024, Month: time.January, Day: 8}).Timeslots(context.Background())
	require.NoError(t, err)

	var titles []string
	for _, slot := range slots {
		titles = append(titles, slot.Title())
	}
	require.Equal(t, []string{
		"Launch Day", "Jukebox", "Speech Programme", "Jukebox", "Jukebox Overnight", "Jukebox",
	}, titles)

	require.Equal(t, time.Date(2024, time.January, 8, 7, 0, 0, 0, time.UTC), slots[0].Start.UTC())
	last := slots[len(slots)-1]
	require.Equal(t, time.Date(2024, time.January, 9, 7, 0, 0, 0, time.UTC), last.Finish().UTC())

	require.Equal(t, []string{"Launch Day", "The Breakfast Show"}, slots[0].Text["title"])
	require.Equal(t, "breakfast.png", slots[0].Image.Get("thumbnail_image"))
	require.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, credits.Names(slots[0].Byline))
	require.Equal(t, "daytime", slots[0].Block.Name)
	require.True(t, slots[1].Filler)
	require.Equal(t, "jukebox", slots[1].Block.Name)
}
