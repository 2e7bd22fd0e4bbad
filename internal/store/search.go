package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"lass/internal/model"
)

// Search result orderings.
const (
	OrderAlpha  = "alpha"
	OrderRecent = "recent"
)

// SearchHit is a subject whose current text metadata matched a search term.
type SearchHit struct {
	Subject model.Ref `json:"subject"`
	Key     string    `json:"key"`
	Value   string    `json:"value"`
	Since   time.Time `json:"since"`
}

// Search finds subjects of kind whose text metadata under one of keys, active
// at at, contains term regardless of case. Each subject appears once, at its
// best-ranked match. OrderAlpha sorts by matched value, OrderRecent by most
// recently effective match first. An empty term or key list returns nil.
func (s *Store) Search(ctx context.Context, kind model.Kind, term string, keys []string, at time.Time, order string) ([]SearchHit, error) {
	term = strings.TrimSpace(term)
	if term == "" || len(keys) == 0 {
		return nil, nil
	}
	if order == "" {
		order = OrderAlpha
	}
	if order != OrderAlpha && order != OrderRecent {
		return nil, fmt.Errorf("unknown search order %q (want %s or %s)", order, OrderAlpha, OrderRecent)
	}
	table, err := metadataTable(kind, model.StrandText)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT m.subject_id, k.name, m.value, m.effective_from
FROM %s m JOIN metadata_key k ON k.id = m.key_id
WHERE k.name IN (%s)
	AND m.effective_from IS NOT NULL AND m.effective_from <= ?
	AND (m.effective_to IS NULL OR m.effective_to > ?)`, table, makePlaceholders(len(keys)))
	args := append(stringArgs(keys), formatTime(at), formatTime(at))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search %s metadata: %w", kind, err)
	}
	defer rows.Close()

	fold := cases.Fold()
	needle := fold.String(term)

	var hits []SearchHit
	for rows.Next() {
		var (
			hit      SearchHit
			sinceRaw string
		)
		if err := rows.Scan(&hit.Subject.ID, &hit.Key, &hit.Value, &sinceRaw); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		if !strings.Contains(fold.String(hit.Value), needle) {
			continue
		}
		if hit.Since, err = parseTime(sinceRaw); err != nil {
			return nil, err
		}
		hit.Subject.Kind = kind
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search hits: %w", err)
	}

	slices.SortStableFunc(hits, func(a, b SearchHit) int {
		if order == OrderRecent {
			return cmp.Or(b.Since.Compare(a.Since), cmp.Compare(a.Subject.ID, b.Subject.ID))
		}
		return cmp.Or(strings.Compare(fold.String(a.Value), fold.String(b.Value)), cmp.Compare(a.Subject.ID, b.Subject.ID))
	})

	seen := make(map[int64]bool, len(hits))
	out := hits[:0]
	for _, hit := range hits {
		if seen[hit.Subject.ID] {
			continue
		}
		seen[hit.Subject.ID] = true
		out = append(out, hit)
	}
	return out, nil
}
