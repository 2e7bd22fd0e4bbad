package bulk_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"lass/internal/bulk"
)

type row struct {
	subject int64
	key     string
	value   string
}

func TestGroupPreservesOrderAndDropsDuplicates(t *testing.T) {
	rows := []row{
		{1, "title", "Own Title"},
		{1, "title", "Package Title"},
		{1, "title", "Own Title"},
		{1, "tag", "rock"},
		{2, "title", "Other"},
		{1, "tag", "jazz"},
	}

	got := bulk.Group(rows,
		func(r row) int64 { return r.subject },
		func(r row) string { return r.key },
		func(r row) string { return r.value },
	)

	want := map[int64]map[string][]string{
		1: {
			"title": {"Own Title", "Package Title"},
			"tag":   {"rock", "jazz"},
		},
		2: {
			"title": {"Other"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected grouping (-want +got):\n%s", diff)
	}
}

func TestGroupSameValueDifferentGroups(t *testing.T) {
	rows := []row{
		{1, "title", "Shared"},
		{2, "title", "Shared"},
		{1, "subtitle", "Shared"},
	}
	got := bulk.Group(rows,
		func(r row) int64 { return r.subject },
		func(r row) string { return r.key },
		func(r row) string { return r.value },
	)
	if len(got[1]["title"]) != 1 || len(got[2]["title"]) != 1 || len(got[1]["subtitle"]) != 1 {
		t.Fatalf("expected duplicates to be tracked per group, got %v", got)
	}
}

func TestGroupEmpty(t *testing.T) {
	got := bulk.Group([]row(nil),
		func(r row) int64 { return r.subject },
		func(r row) string { return r.key },
		func(r row) string { return r.value },
	)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
