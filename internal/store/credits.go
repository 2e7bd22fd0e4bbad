package store

import (
	"context"
	"database/sql"
	"fmt"

	"lass/internal/model"
)

// CreditRows returns every credit of the given subjects joined with person
// and credit type, restricted to types when any are given. Rows come back
// ordered by subject, type, last name, then first name, unfiltered by time.
func (s *Store) CreditRows(ctx context.Context, kind model.Kind, ids []int64, types []string) ([]model.CreditRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	table, err := creditTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT c.subject_id, t.name, t.plural, t.in_byline,
	p.id, p.first_name, p.last_name, c.effective_from, c.effective_to
FROM %s c
JOIN credit_type t ON t.id = c.credit_type_id
JOIN person p ON p.id = c.person_id
WHERE c.subject_id IN (%s)`, table, makePlaceholders(len(ids)))
	args := int64Args(ids)
	if len(types) > 0 {
		query += " AND t.name IN (" + makePlaceholders(len(types)) + ")"
		args = append(args, stringArgs(types)...)
	}
	query += " ORDER BY c.subject_id, t.name, p.last_name, p.first_name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s credits: %w", kind, err)
	}
	defer rows.Close()

	var out []model.CreditRow
	for rows.Next() {
		var (
			row      model.CreditRow
			plural   sql.NullString
			inByline int
			from, to sql.NullString
		)
		if err := rows.Scan(&row.SubjectID, &row.Type, &plural, &inByline,
			&row.Person.ID, &row.Person.FirstName, &row.Person.LastName, &from, &to); err != nil {
			return nil, fmt.Errorf("scan %s credit: %w", kind, err)
		}
		row.Plural = plural.String
		row.InByline = inByline != 0
		if row.Span, err = scanSpan(from, to); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s credits: %w", kind, err)
	}
	return out, nil
}

// CreditTypes returns every credit type ordered by name.
func (s *Store) CreditTypes(ctx context.Context) ([]model.CreditType, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, plural, in_byline FROM credit_type ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query credit types: %w", err)
	}
	defer rows.Close()

	var out []model.CreditType
	for rows.Next() {
		var (
			ct       model.CreditType
			plural   sql.NullString
			inByline int
		)
		if err := rows.Scan(&ct.ID, &ct.Name, &plural, &inByline); err != nil {
			return nil, fmt.Errorf("scan credit type: %w", err)
		}
		ct.Plural = plural.String
		ct.InByline = inByline != 0
		out = append(out, ct)
	}
	return out, rows.Err()
}
