package schedule_test

import (
	"testing"
	"time"

	"lass/internal/config"
	"lass/internal/logging"
	"lass/internal/model"
	"lass/internal/schedule"
	"lass/internal/timectx"
)

func testBlockConfig() config.BlockConfig {
	return config.BlockConfig{
		RangeBlocks: []config.RangeBlock{
			{Hour: 0, Minute: 0, Block: "overnight"},
			{Hour: 7, Minute: 0, Block: "daytime"},
			{Hour: 19, Minute: 0, Block: "evening"},
		},
		NameBlocks: []config.NameBlock{
			{Pattern: "*news*", Block: "news"},
			{Pattern: "the late*", Block: ""},
			{Pattern: "Specialist ?", Block: "specialist"},
		},
		Blocks: map[string]map[string]string{
			"daytime": {"label": "Daytime"},
			"news":    {"label": "News"},
		},
	}
}

func newAnnotator(t *testing.T, cfg config.BlockConfig) *schedule.BlockAnnotator {
	t.Helper()
	a, err := schedule.NewBlockAnnotator(cfg, newContext(t, "UTC", 7), logging.NewNop())
	if err != nil {
		t.Fatalf("NewBlockAnnotator: %v", err)
	}
	return a
}

func blockName(slot *model.Timeslot) string {
	if slot.Block == nil {
		return "<none>"
	}
	return slot.Block.Name
}

func TestAnnotatePrecedence(t *testing.T) {
	slots := []*model.Timeslot{
		show(1, "Insomnia", utc(1, 6, 0), time.Hour),
		show(2, "Morning Show", utc(1, 9, 0), time.Hour),
		show(3, "Lunchtime NEWS hour", utc(1, 12, 0), time.Hour),
		show(4, "Specialist X", utc(1, 14, 0), time.Hour),
		show(5, "Drivetime", utc(1, 18, 59), time.Minute),
		show(6, "The Late Night Show", utc(1, 20, 0), time.Hour),
		show(7, "Dinner Party", utc(1, 21, 0), time.Hour),
		show(8, "Small Hours", utc(2, 1, 0), time.Hour),
		show(9, "Breakfast", utc(2, 7, 0), time.Hour),
	}

	newAnnotator(t, testBlockConfig()).Annotate(slots)

	want := []string{"overnight", "daytime", "news", "specialist", "daytime", "<none>", "evening", "overnight", "daytime"}
	for i, slot := range slots {
		if got := blockName(slot); got != want[i] {
			t.Errorf("%s: unexpected block: got %s want %s", slot.Title(), got, want[i])
		}
	}
	if slots[1].Block.Attrs["label"] != "Daytime" {
		t.Fatalf("unexpected block attrs: %v", slots[1].Block.Attrs)
	}
	if slots[3].Block.Attrs != nil {
		t.Fatalf("expected undefined block to carry no attrs, got %v", slots[3].Block.Attrs)
	}
}

func TestAnnotateBeforeFirstRangeBlock(t *testing.T) {
	cfg := config.BlockConfig{RangeBlocks: []config.RangeBlock{{Hour: 8, Minute: 30, Block: "daytime"}}}
	slots := []*model.Timeslot{
		show(1, "Early", utc(1, 7, 0), time.Hour),
		show(2, "Later", utc(1, 8, 30), time.Hour),
		show(3, "Tomorrow early", utc(2, 7, 0), time.Hour),
	}
	newAnnotator(t, cfg).Annotate(slots)

	want := []string{"<none>", "daytime", "daytime"}
	for i, slot := range slots {
		if got := blockName(slot); got != want[i] {
			t.Errorf("%s: unexpected block: got %s want %s", slot.Title(), got, want[i])
		}
	}
}

func TestAnnotateWithoutRangeBlocks(t *testing.T) {
	cfg := testBlockConfig()
	cfg.RangeBlocks = nil
	slots := []*model.Timeslot{
		show(1, "Anything", utc(1, 9, 0), time.Hour),
		show(2, "Evening News", utc(1, 18, 0), time.Hour),
	}
	newAnnotator(t, cfg).Annotate(slots)

	if slots[0].Block != nil || blockName(slots[1]) != "news" {
		t.Fatalf("unexpected blocks: %s, %s", blockName(slots[0]), blockName(slots[1]))
	}
}

func TestNameBlockGlobs(t *testing.T) {
	cfg := config.BlockConfig{NameBlocks: []config.NameBlock{
		{Pattern: "[!a-c]at", Block: "not-abc"},
		{Pattern: "[bc]at", Block: "bc"},
		{Pattern: "a.b", Block: "literal-dot"},
		{Pattern: "[oops", Block: "literal-bracket"},
		{Pattern: "STRASSE*", Block: "folded"},
	}}
	a := newAnnotator(t, cfg)

	tests := []struct {
		title   string
		block   string
		matched bool
	}{
		{title: "hat", block: "not-abc", matched: true},
		{title: "Cat", block: "bc", matched: true},
		{title: "aat", matched: false},
		{title: "a.b", block: "literal-dot", matched: true},
		{title: "axb", matched: false},
		{title: "[OOPS", block: "literal-bracket", matched: true},
		{title: "Strasse Party", block: "folded", matched: true},
		{title: "", matched: false},
	}
	for _, tt := range tests {
		block, matched := a.NameBlock(tt.title)
		if block != tt.block || matched != tt.matched {
			t.Errorf("NameBlock(%q): got (%q, %v) want (%q, %v)", tt.title, block, matched, tt.block, tt.matched)
		}
	}
}

func TestRangeBlocksRepeatDaily(t *testing.T) {
	tc := newContext(t, "Europe/London", 7)
	seq := schedule.RangeBlocks(testBlockConfig().RangeBlocks, timectx.Date{Year: 2024, Month: time.March, Day: 30}, tc)

	var names []string
	var hours []int
	for at, name := range seq {
		names = append(names, name)
		hours = append(hours, tc.Localize(at).Hour())
		if len(names) == 6 {
			break
		}
	}
	wantNames := []string{"overnight", "daytime", "evening", "overnight", "daytime", "evening"}
	for i := range wantNames {
		if names[i] != wantNames[i] {
			t.Fatalf("unexpected block %d: got %s want %s", i, names[i], wantNames[i])
		}
	}
	// The second day crosses the spring clock change; local hours still line up.
	wantHours := []int{0, 7, 19, 0, 7, 19}
	for i := range wantHours {
		if hours[i] != wantHours[i] {
			t.Fatalf("unexpected local hour %d: got %d want %d", i, hours[i], wantHours[i])
		}
	}
}
