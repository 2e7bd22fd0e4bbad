package metadata_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lass/internal/logging"
	"lass/internal/metadata"
	"lass/internal/model"
	"lass/internal/transient"
)

var now = time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time { return now.AddDate(0, 0, -n) }

type fakeSource struct {
	rows  []model.MetadataRow
	calls int
	ids   [][]int64
	keys  [][]string
}

func (f *fakeSource) MetadataRows(_ context.Context, _ model.Kind, ids []int64, _ string, keys []string) ([]model.MetadataRow, error) {
	f.calls++
	f.ids = append(f.ids, slices.Clone(ids))
	f.keys = append(f.keys, slices.Clone(keys))
	var out []model.MetadataRow
	for _, row := range f.rows {
		if !slices.Contains(ids, row.SubjectID) {
			continue
		}
		if len(keys) > 0 && !slices.Contains(keys, row.Key) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func own(id int64, key, value string, span transient.Span) model.MetadataRow {
	return model.MetadataRow{SubjectID: id, Key: key, Value: value, Priority: model.PriorityOwn, Span: span}
}

func pkg(id int64, key, value string, span transient.Span) model.MetadataRow {
	return model.MetadataRow{SubjectID: id, Key: key, Value: value, Priority: model.PriorityPackage, Span: span}
}

func show(id int64) model.Subject { return model.Ref{Kind: model.KindShow, ID: id} }

func newResolver(src metadata.RowSource) *metadata.Resolver {
	return metadata.NewResolver(src, logging.NewNop())
}

func TestOwnMetadataBeatsPackage(t *testing.T) {
	src := &fakeSource{rows: []model.MetadataRow{
		pkg(1, "title", "Package Title", transient.OpenFrom(daysAgo(30))),
		own(1, "title", "Own Title", transient.OpenFrom(daysAgo(10))),
	}}

	got, err := newResolver(src).Resolve(context.Background(), []model.Subject{show(1)}, model.StrandText, []string{"title"}, now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[int64]model.Values{1: {"title": {"Own Title"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected metadata (-want +got):\n%s", diff)
	}
}

func TestLaterEffectiveFromWinsWithinSource(t *testing.T) {
	src := &fakeSource{rows: []model.MetadataRow{
		own(1, "title", "Old Title", transient.OpenFrom(daysAgo(30))),
		own(1, "title", "New Title", transient.OpenFrom(daysAgo(2))),
		own(1, "title", "Future Title", transient.OpenFrom(now.Add(time.Hour))),
		own(1, "title", "Expired Title", transient.Bounded(daysAgo(60), daysAgo(1))),
		own(1, "title", "Never Title", transient.Span{}),
	}}

	got, err := newResolver(src).ResolveOne(context.Background(), show(1), model.StrandText, []string{"title"}, now)
	if err != nil {
		t.Fatalf("ResolveOne: %v", err)
	}
	if diff := cmp.Diff(model.Values{"title": {"New Title"}}, got); diff != "" {
		t.Fatalf("unexpected metadata (-want +got):\n%s", diff)
	}
}

func TestPackageDefaultFillsMissingTitle(t *testing.T) {
	src := &fakeSource{rows: []model.MetadataRow{
		own(1, "description", "Music until dawn", transient.OpenFrom(daysAgo(5))),
		pkg(1, "title", "Late Show", transient.OpenFrom(daysAgo(100))),
	}}

	got, err := newResolver(src).Resolve(context.Background(), []model.Subject{show(1)}, model.StrandText, []string{"title"}, now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[int64]model.Values{1: {"title": {"Late Show"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected metadata (-want +got):\n%s", diff)
	}
}

func TestMultipleValuesKeepPriorityOrder(t *testing.T) {
	tag := func(row model.MetadataRow) model.MetadataRow {
		row.AllowMultiple = true
		return row
	}
	src := &fakeSource{rows: []model.MetadataRow{
		tag(pkg(1, "tag", "music", transient.OpenFrom(daysAgo(50)))),
		tag(own(1, "tag", "rock", transient.OpenFrom(daysAgo(20)))),
		tag(own(1, "tag", "live", transient.OpenFrom(daysAgo(3)))),
		tag(pkg(1, "tag", "live", transient.OpenFrom(daysAgo(3)))),
	}}

	got, err := newResolver(src).ResolveOne(context.Background(), show(1), model.StrandText, []string{"tag"}, now)
	if err != nil {
		t.Fatalf("ResolveOne: %v", err)
	}
	if diff := cmp.Diff(model.Values{"tag": {"live", "rock", "music"}}, got); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
}

func TestResolveBatchesSubjectsAndCaches(t *testing.T) {
	src := &fakeSource{rows: []model.MetadataRow{
		own(1, "title", "One", transient.OpenFrom(daysAgo(1))),
		own(2, "title", "Two", transient.OpenFrom(daysAgo(1))),
	}}
	resolver := newResolver(src)
	subjects := []model.Subject{show(1), show(2), show(3)}

	first, err := resolver.Resolve(context.Background(), subjects, model.StrandText, []string{"title"}, now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("unexpected source calls: got %d want 1", src.calls)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, src.ids[0]); diff != "" {
		t.Fatalf("unexpected batch ids (-want +got):\n%s", diff)
	}

	second, err := resolver.Resolve(context.Background(), subjects, model.StrandText, []string{"title"}, now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected cached resolution, got %d source calls", src.calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("cached result differs (-first +second):\n%s", diff)
	}
	if _, ok := second[3]; !ok {
		t.Fatal("expected subject without metadata to be present with empty values")
	}

	if _, err := resolver.Resolve(context.Background(), subjects, model.StrandText, []string{"title", "description"}, now); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("unexpected source calls: got %d want 2", src.calls)
	}
	if diff := cmp.Diff([]string{"description"}, src.keys[1]); diff != "" {
		t.Fatalf("expected only the missing key to be fetched (-want +got):\n%s", diff)
	}

	if _, err := resolver.Resolve(context.Background(), subjects, model.StrandText, []string{"title"}, now.Add(time.Minute)); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("expected a different instant to miss the cache, got %d calls", src.calls)
	}
}

func TestCachedValuesAreNotSharedBetweenResults(t *testing.T) {
	src := &fakeSource{rows: []model.MetadataRow{
		{SubjectID: 1, Key: "tag", Value: "a", AllowMultiple: true, Span: transient.OpenFrom(daysAgo(3))},
		{SubjectID: 1, Key: "tag", Value: "b", AllowMultiple: true, Span: transient.OpenFrom(daysAgo(2))},
		{SubjectID: 1, Key: "tag", Value: "c", AllowMultiple: true, Span: transient.OpenFrom(daysAgo(1))},
	}}
	resolver := newResolver(src)

	first, _ := resolver.ResolveOne(context.Background(), show(1), model.StrandText, []string{"tag"}, now)
	first["tag"] = append(first["tag"], "mutated")
	second, _ := resolver.ResolveOne(context.Background(), show(1), model.StrandText, []string{"tag"}, now)
	second["tag"] = append(second["tag"], "other")

	if first["tag"][3] != "mutated" {
		t.Fatalf("append to one result leaked into another: %v", first["tag"])
	}
}

func TestEmptyKeyListMeansAllKeys(t *testing.T) {
	src := &fakeSource{rows: []model.MetadataRow{
		own(1, "title", "Title", transient.OpenFrom(daysAgo(1))),
		own(1, "description", "Desc", transient.OpenFrom(daysAgo(1))),
	}}
	got, err := newResolver(src).ResolveOne(context.Background(), show(1), model.StrandText, nil, now)
	if err != nil {
		t.Fatalf("ResolveOne: %v", err)
	}
	want := model.Values{"title": {"Title"}, "description": {"Desc"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected metadata (-want +got):\n%s", diff)
	}
	if src.keys[0] != nil {
		t.Fatalf("expected no key filter to be pushed down, got %v", src.keys[0])
	}
}

func TestUnknownStrandResolvesEmpty(t *testing.T) {
	src := &fakeSource{}
	got, err := newResolver(src).Resolve(context.Background(), []model.Subject{show(1)}, "audio", []string{"title"}, now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff(map[int64]model.Values{1: {}}, got); diff != "" {
		t.Fatalf("unexpected metadata (-want +got):\n%s", diff)
	}
	if src.calls != 0 {
		t.Fatalf("expected no source calls, got %d", src.calls)
	}
}

func TestMixedKindsRejected(t *testing.T) {
	subjects := []model.Subject{show(1), model.Ref{Kind: model.KindSeason, ID: 1}}
	_, err := newResolver(&fakeSource{}).Resolve(context.Background(), subjects, model.StrandText, nil, now)
	if !errors.Is(err, metadata.ErrMixedKinds) {
		t.Fatalf("expected ErrMixedKinds, got %v", err)
	}
}

type failingSource struct{ err error }

func (f failingSource) MetadataRows(context.Context, model.Kind, []int64, string, []string) ([]model.MetadataRow, error) {
	return nil, f.err
}

func TestSourceErrorPropagates(t *testing.T) {
	boom := errors.New("database locked")
	_, err := newResolver(failingSource{err: boom}).Resolve(context.Background(), []model.Subject{show(1)}, model.StrandText, []string{"title"}, now)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}
