package metadata

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"lass/internal/bulk"
	"lass/internal/logging"
	"lass/internal/model"
)

// ErrMixedKinds is returned when one batch holds subjects of different kinds.
var ErrMixedKinds = errors.New("subjects of different kinds in one batch")

// RowSource supplies candidate metadata rows for a batch of subjects: the
// subjects' own items at model.PriorityOwn and package defaults at
// model.PriorityPackage. An empty key list asks for every key.
type RowSource interface {
	MetadataRows(ctx context.Context, kind model.Kind, ids []int64, strand string, keys []string) ([]model.MetadataRow, error)
}

// Resolver resolves metadata for batches of subjects. A Resolver and its
// cache belong to one schedule assembly.
type Resolver struct {
	source RowSource
	cache  *Cache
	logger *slog.Logger
}

// NewResolver returns a Resolver with a fresh cache.
func NewResolver(source RowSource, logger *slog.Logger) *Resolver {
	return &Resolver{
		source: source,
		cache:  NewCache(),
		logger: logging.NewComponentLogger(logger, "metadata"),
	}
}

// Cache exposes the resolver's cache, mainly for diagnostics.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve returns, for each subject id, the values of keys in strand that
// are active at the instant at. Own metadata beats package defaults, and
// within a source the most recently started item comes first. Keys that do
// not allow multiple values keep only that first value.
//
// Subjects whose kind does not carry strand resolve to empty values.
func (r *Resolver) Resolve(ctx context.Context, subjects []model.Subject, strand string, keys []string, at time.Time) (map[int64]model.Values, error) {
	result := make(map[int64]model.Values, len(subjects))
	if len(subjects) == 0 {
		return result, nil
	}

	kind := subjects[0].SubjectKind()
	for _, s := range subjects {
		if s.SubjectKind() != kind {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedKinds, kind, s.SubjectKind())
		}
		if _, ok := result[s.SubjectID()]; !ok {
			result[s.SubjectID()] = model.Values{}
		}
	}

	capability, ok := model.Capabilities(kind)
	if !ok || !capability.HasStrand(strand) {
		logging.Event("metadata_unknown_strand").Debug(r.logger, "no metadata relationship",
			logging.String(logging.FieldSubjectKind, string(kind)),
			logging.String(logging.FieldStrand, strand),
		)
		return result, nil
	}

	keys = uniqueKeys(keys)
	misses := r.collectHits(subjects, strand, keys, at, result)
	if len(misses.ids) == 0 {
		return result, nil
	}

	rows, err := r.source.MetadataRows(ctx, kind, misses.ids, strand, misses.keys)
	if err != nil {
		return nil, fmt.Errorf("fetch %s metadata for %d %s subjects: %w", strand, len(misses.ids), kind, err)
	}

	grouped := group(activeRows(rows, misses.keys, at))

	for _, s := range subjects {
		id := s.SubjectID()
		if _, missed := misses.bySubject[id]; !missed {
			continue
		}
		resolved := grouped[id]
		if len(keys) == 0 {
			for key, values := range resolved {
				r.cache.store(newCacheKey(s, strand, key, at), values)
			}
		} else {
			for _, key := range misses.bySubject[id] {
				r.cache.store(newCacheKey(s, strand, key, at), resolved[key])
			}
		}
		for key, values := range resolved {
			result[id][key] = slices.Clip(values)
		}
	}

	cacheHits, cacheMisses := r.cache.Stats()
	r.logger.Debug("metadata resolved",
		logging.String(logging.FieldSubjectKind, string(kind)),
		logging.String(logging.FieldStrand, strand),
		logging.Int("subjects", len(subjects)),
		logging.Int("rows", len(rows)),
		logging.Int("cache_hits", cacheHits),
		logging.Int("cache_misses", cacheMisses),
	)
	return result, nil
}

// ResolveOne resolves metadata for a single subject.
func (r *Resolver) ResolveOne(ctx context.Context, subject model.Subject, strand string, keys []string, at time.Time) (model.Values, error) {
	resolved, err := r.Resolve(ctx, []model.Subject{subject}, strand, keys, at)
	if err != nil {
		return nil, err
	}
	return resolved[subject.SubjectID()], nil
}

type missSet struct {
	ids       []int64
	keys      []string
	bySubject map[int64][]string
}

// collectHits copies cached values into result and reports which subjects
// and keys still need fetching. With no keys requested every subject misses.
func (r *Resolver) collectHits(subjects []model.Subject, strand string, keys []string, at time.Time, result map[int64]model.Values) missSet {
	misses := missSet{bySubject: make(map[int64][]string)}
	missedKeys := make(map[string]struct{})

	for _, s := range subjects {
		id := s.SubjectID()
		if _, seen := misses.bySubject[id]; seen {
			continue
		}
		if len(keys) == 0 {
			misses.bySubject[id] = nil
			misses.ids = append(misses.ids, id)
			continue
		}
		var subjectMisses []string
		for _, key := range keys {
			if values, ok := r.cache.lookup(newCacheKey(s, strand, key, at)); ok {
				if len(values) > 0 {
					result[id][key] = slices.Clip(values)
				}
				continue
			}
			subjectMisses = append(subjectMisses, key)
			missedKeys[key] = struct{}{}
		}
		if len(subjectMisses) > 0 {
			misses.bySubject[id] = subjectMisses
			misses.ids = append(misses.ids, id)
		}
	}

	if len(keys) > 0 {
		for _, key := range keys {
			if _, ok := missedKeys[key]; ok {
				misses.keys = append(misses.keys, key)
			}
		}
	}
	return misses
}

func activeRows(rows []model.MetadataRow, keys []string, at time.Time) []model.MetadataRow {
	active := make([]model.MetadataRow, 0, len(rows))
	for _, row := range rows {
		if !row.Span.IsActive(at) {
			continue
		}
		if len(keys) > 0 && !slices.Contains(keys, row.Key) {
			continue
		}
		active = append(active, row)
	}
	slices.SortStableFunc(active, compareRows)
	return active
}

// compareRows orders by subject, key, priority ascending, then effective
// start descending. Active rows always have a start.
func compareRows(a, b model.MetadataRow) int {
	return cmp.Or(
		cmp.Compare(a.SubjectID, b.SubjectID),
		cmp.Compare(a.Key, b.Key),
		cmp.Compare(a.Priority, b.Priority),
		b.Span.From.Compare(*a.Span.From),
	)
}

func group(rows []model.MetadataRow) map[int64]map[string][]string {
	single := make(map[string]bool)
	for _, row := range rows {
		if !row.AllowMultiple {
			single[row.Key] = true
		}
	}

	grouped := bulk.Group(rows,
		func(r model.MetadataRow) int64 { return r.SubjectID },
		func(r model.MetadataRow) string { return r.Key },
		func(r model.MetadataRow) string { return r.Value },
	)
	for _, byKey := range grouped {
		for key, values := range byKey {
			if single[key] && len(values) > 1 {
				byKey[key] = values[:1]
			}
		}
	}
	return grouped
}

func uniqueKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if !slices.Contains(out, key) {
			out = append(out, key)
		}
	}
	return out
}
