package schedule_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"lass/internal/config"
	"lass/internal/logging"
	"lass/internal/model"
	"lass/internal/schedule"
)

func TestFillMondayExample(t *testing.T) {
	// 2024-01-01 is a Monday.
	morning := show(1, "Breakfast", utc(1, 9, 0), time.Hour)

	got, err := schedule.Fill([]*model.Timeslot{morning}, plainFiller, utc(1, 0, 0), utc(2, 0, 0))
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected slot count: got %d want 3", len(got))
	}
	want := []time.Duration{9 * time.Hour, time.Hour, 14 * time.Hour}
	for i, slot := range got {
		if slot.Duration != want[i] {
			t.Fatalf("slot %d: unexpected duration: got %s want %s", i, slot.Duration, want[i])
		}
	}
	if got[1] != morning {
		t.Fatal("expected the real timeslot to be passed through unchanged")
	}
	if !got[0].Filler || !got[2].Filler {
		t.Fatal("expected gaps to be filled with filler")
	}
	assertCovers(t, got, utc(1, 0, 0), utc(2, 0, 0))
}

func TestFillCoversWindow(t *testing.T) {
	start, finish := utc(1, 7, 0), utc(2, 7, 0)
	tests := []struct {
		name  string
		slots []*model.Timeslot
		count int
	}{
		{name: "empty", count: 1},
		{name: "back to back", slots: []*model.Timeslot{
			show(1, "A", utc(1, 7, 0), 12*time.Hour),
			show(2, "B", utc(1, 19, 0), 12*time.Hour),
		}, count: 2},
		{name: "gaps between", slots: []*model.Timeslot{
			show(1, "A", utc(1, 8, 0), time.Hour),
			show(2, "B", utc(1, 10, 30), 90*time.Minute),
			show(3, "C", utc(1, 12, 0), time.Hour),
		}, count: 6},
		{name: "gap only at end", slots: []*model.Timeslot{
			show(1, "A", utc(1, 7, 0), 2*time.Hour),
		}, count: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schedule.Fill(tt.slots, plainFiller, start, finish)
			if err != nil {
				t.Fatalf("Fill: %v", err)
			}
			if len(got) != tt.count {
				t.Fatalf("unexpected slot count: got %d want %d", len(got), tt.count)
			}
			assertCovers(t, got, start, finish)
			for _, slot := range tt.slots {
				if !slices.Contains(got, slot) {
					t.Fatalf("timeslot %d missing from output", slot.ID)
				}
			}
			for _, slot := range got {
				if !slot.Filler && !slices.Contains(tt.slots, slot) {
					t.Fatalf("unexpected non-filler slot %+v", slot)
				}
			}
		})
	}
}

func TestFillRejectsOverlap(t *testing.T) {
	slots := []*model.Timeslot{
		show(1, "Long", utc(1, 9, 0), 2*time.Hour),
		show(2, "Clash", utc(1, 10, 0), time.Hour),
	}
	_, err := schedule.Fill(slots, plainFiller, utc(1, 7, 0), utc(2, 7, 0))
	if !errors.Is(err, schedule.ErrOverlapDetected) {
		t.Fatalf("expected ErrOverlapDetected, got %v", err)
	}
	var overlap *schedule.OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("expected *OverlapError, got %T", err)
	}
	if overlap.Title != "Clash" || overlap.Gap != -time.Hour {
		t.Fatalf("unexpected overlap detail: %+v", overlap)
	}
}

func TestFillRejectsInvertedWindow(t *testing.T) {
	if _, err := schedule.Fill(nil, plainFiller, utc(2, 0, 0), utc(1, 0, 0)); !errors.Is(err, schedule.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	got, err := schedule.Fill(nil, plainFiller, utc(1, 0, 0), utc(1, 0, 0))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result for empty window, got %v, %v", got, err)
	}
}

func TestFillerFromConfig(t *testing.T) {
	tc := newContext(t, "UTC", 7)
	blocks, err := schedule.NewBlockAnnotator(config.BlockConfig{
		Blocks: map[string]map[string]string{"jukebox": {"label": "Jukebox"}},
	}, tc, logging.NewNop())
	if err != nil {
		t.Fatalf("NewBlockAnnotator: %v", err)
	}
	factory := schedule.FillerFromConfig(config.FillerConfig{
		Metadata: map[string]map[string]string{
			"text":  {"title": "Jukebox", "description": "Non-stop music"},
			"image": {"thumbnail_image": "/img/jukebox.png"},
		},
		Block: "jukebox",
	}, blocks)

	first := factory(utc(1, 7, 0), time.Hour)
	second := factory(utc(1, 8, 0), time.Hour)

	if !first.Filler || !first.Collapsible {
		t.Fatalf("expected collapsible filler, got %+v", first)
	}
	if first.Title() != "Jukebox" || first.Image.Get("thumbnail_image") != "/img/jukebox.png" {
		t.Fatalf("unexpected filler metadata: text=%v image=%v", first.Text, first.Image)
	}
	if first.Block == nil || first.Block.Name != "jukebox" || first.Block.Attrs["label"] != "Jukebox" {
		t.Fatalf("unexpected filler block: %+v", first.Block)
	}

	first.Text["title"][0] = "Changed"
	if second.Title() != "Jukebox" {
		t.Fatal("filler timeslots share metadata")
	}
}
