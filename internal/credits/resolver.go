package credits

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

// RowSource supplies credit rows joined with their person and credit type.
// An empty type list asks for every type.
type RowSource interface {
	CreditRows(ctx context.Context, kind model.Kind, ids []int64, types []string) ([]model.CreditRow, error)
}

// Resolver resolves credits for batches of subjects.
type Resolver struct {
	source RowSource
	logger *slog.Logger
}

// NewResolver returns a resolver reading credit rows from source.
func NewResolver(source RowSource, logger *slog.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logging.NewComponentLogger(logger, "credits"),
	}
}

// Resolve returns, for each subject id, the people credited at the instant
// at grouped by credit type name. Within a type people are ordered by last
// then first name. Kinds that cannot be credited resolve to empty results.
func (r *Resolver) Resolve(ctx context.Context, subjects []model.Subject, types []string, at time.Time) (map[int64]model.CreditsByType, error) {
	result := make(map[int64]model.CreditsByType, len(subjects))
	if len(subjects) == 0 {
		return result, nil
	}

	kind := subjects[0].SubjectKind()
	ids := make([]int64, 0, len(subjects))
	for _, s := range subjects {
		if s.SubjectKind() != kind {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedKinds, kind, s.SubjectKind())
		}
		if _, ok := result[s.SubjectID()]; ok {
			continue
		}
		result[s.SubjectID()] = model.CreditsByType{}
		ids = append(ids, s.SubjectID())
	}

	capability, ok := model.Capabilities(kind)
	if !ok || !capability.Credits {
		logging.Event("credits_unsupported_kind").Debug(r.logger, "no credit relationship",
			logging.String(logging.FieldSubjectKind, string(kind)),
		)
		return result, nil
	}

	rows, err := r.source.CreditRows(ctx, kind, ids, types)
	if err != nil {
		return nil, fmt.Errorf("fetch credits for %d %s subjects: %w", len(ids), kind, err)
	}

	active := make([]model.CreditRow, 0, len(rows))
	for _, row := range rows {
		if row.Span.IsActive(at) && (len(types) == 0 || slices.Contains(types, row.Type)) {
			active = append(active, row)
		}
	}
	slices.SortStableFunc(active, compareRows)

	grouped := bulk.Group(active,
		func(row model.CreditRow) int64 { return row.SubjectID },
		func(row model.CreditRow) string { return row.Type },
		func(row model.CreditRow) model.Credited {
			return model.Credited{Person: row.Person, Type: row.Type, Plural: row.Plural, InByline: row.InByline}
		},
	)
	for id, byType := range grouped {
		for name, credited := range byType {
			result[id][name] = credited
		}
	}

	for _, name := range types {
		if !typeSeen(active, name) {
			logging.Event("credits_unknown_type").Debug(r.logger, "no active credits of type",
				logging.String(logging.FieldSubjectKind, string(kind)),
				logging.String(logging.FieldCreditType, name),
			)
		}
	}
	r.logger.Debug("credits resolved",
		logging.String(logging.FieldSubjectKind, string(kind)),
		logging.Int("subjects", len(ids)),
		logging.Int("rows", len(rows)),
		logging.Int("active", len(active)),
	)
	return result, nil
}

// ResolveOne resolves credits for a single subject.
func (r *Resolver) ResolveOne(ctx context.Context, subject model.Subject, types []string, at time.Time) (model.CreditsByType, error) {
	resolved, err := r.Resolve(ctx, []model.Subject{subject}, types, at)
	if err != nil {
		return nil, err
	}
	return resolved[subject.SubjectID()], nil
}

func typeSeen(rows []model.CreditRow, name string) bool {
	return slices.ContainsFunc(rows, func(row model.CreditRow) bool { return row.Type == name })
}

func compareRows(a, b model.CreditRow) int {
	return cmp.Or(
		cmp.Compare(a.SubjectID, b.SubjectID),
		cmp.Compare(a.Type, b.Type),
		cmp.Compare(a.Person.LastName, b.Person.LastName),
		cmp.Compare(a.Person.FirstName, b.Person.FirstName),
	)
}

// Byline flattens the credits shown in a subject's by-line: credit types in
// name order, people in the order Resolve produced.
func Byline(byType model.CreditsByType) []model.Credited {
	names := make([]string, 0, len(byType))
	for name := range byType {
		names = append(names, name)
	}
	slices.Sort(names)

	var byline []model.Credited
	for _, name := range names {
		for _, credited := range byType[name] {
			if credited.InByline {
				byline = append(byline, credited)
			}
		}
	}
	return byline
}

// Names joins the full names of people in a by-line for compact display.
func Names(byline []model.Credited) []string {
	names := make([]string, 0, len(byline))
	for _, credited := range byline {
		names = append(names, credited.Person.FullName())
	}
	return names
}
