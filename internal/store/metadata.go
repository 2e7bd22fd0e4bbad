package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"lass/internal/model"
	"lass/internal/transient"
)

// MetadataRows returns candidate rows for strand of the given subjects: their
// own items at model.PriorityOwn and, for kinds that take packages, package
// defaults at model.PriorityPackage. A package row's span is the overlap of
// the item, the package entry, and the package itself when the package sets
// one. An empty key list returns every key.
//
// Rows are not filtered by time; resolution happens in the caller.
func (s *Store) MetadataRows(ctx context.Context, kind model.Kind, ids []int64, strand string, keys []string) ([]model.MetadataRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ownTable, err := metadataTable(kind, strand)
	if err != nil {
		return nil, err
	}
	tables, _ := tablesFor(kind)

	keyFilter := ""
	if len(keys) > 0 {
		keyFilter = " AND k.name IN (" + makePlaceholders(len(keys)) + ")"
	}
	idList := makePlaceholders(len(ids))

	var (
		query strings.Builder
		args  []any
	)
	fmt.Fprintf(&query, `SELECT m.subject_id, k.name, m.value, %d, k.allow_multiple,
	m.effective_from, m.effective_to, NULL, NULL, NULL, NULL
FROM %s m JOIN metadata_key k ON k.id = m.key_id
WHERE m.subject_id IN (%s)%s`, model.PriorityOwn, ownTable, idList, keyFilter)
	args = append(args, int64Args(ids)...)
	args = append(args, stringArgs(keys)...)

	if packageTable, ok := packageMetadataTable(strand); ok && tables.packageEntries != "" {
		fmt.Fprintf(&query, `
UNION ALL
SELECT e.subject_id, k.name, pm.value, %d, k.allow_multiple,
	pm.effective_from, pm.effective_to, e.effective_from, e.effective_to, p.effective_from, p.effective_to
FROM %s e
JOIN package p ON p.id = e.package_id
JOIN %s pm ON pm.subject_id = p.id
JOIN metadata_key k ON k.id = pm.key_id
WHERE e.subject_id IN (%s)%s`, model.PriorityPackage, tables.packageEntries, packageTable, idList, keyFilter)
		args = append(args, int64Args(ids)...)
		args = append(args, stringArgs(keys)...)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s %s metadata: %w", kind, strand, err)
	}
	defer rows.Close()

	var out []model.MetadataRow
	for rows.Next() {
		row, err := scanMetadataRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s %s metadata: %w", kind, strand, err)
	}
	return out, nil
}

func scanMetadataRow(rows *sql.Rows) (model.MetadataRow, error) {
	var (
		row                    model.MetadataRow
		allowMultiple          int
		itemFrom, itemTo       sql.NullString
		entryFrom, entryTo     sql.NullString
		packageFrom, packageTo sql.NullString
	)
	if err := rows.Scan(&row.SubjectID, &row.Key, &row.Value, &row.Priority, &allowMultiple,
		&itemFrom, &itemTo, &entryFrom, &entryTo, &packageFrom, &packageTo); err != nil {
		return model.MetadataRow{}, fmt.Errorf("scan metadata row: %w", err)
	}
	row.AllowMultiple = allowMultiple != 0

	span, err := scanSpan(itemFrom, itemTo)
	if err != nil {
		return model.MetadataRow{}, err
	}
	if row.Priority == model.PriorityPackage {
		entry, err := scanSpan(entryFrom, entryTo)
		if err != nil {
			return model.MetadataRow{}, err
		}
		span = span.Intersect(entry)

		pkg, err := scanSpan(packageFrom, packageTo)
		if err != nil {
			return model.MetadataRow{}, err
		}
		if pkg != (transient.Span{}) {
			span = span.Intersect(pkg)
		}
	}
	row.Span = span
	return row, nil
}

// Keys returns every metadata key definition ordered by name.
func (s *Store) Keys(ctx context.Context) ([]model.Key, error) {
	return s.queryKeys(ctx, "SELECT id, name, plural, allow_multiple, searchable, cache_seconds FROM metadata_key ORDER BY name")
}

// SearchableKeys returns the keys that search may match against, ordered by
// their plural name.
func (s *Store) SearchableKeys(ctx context.Context) ([]model.Key, error) {
	return s.queryKeys(ctx, `SELECT id, name, plural, allow_multiple, searchable, cache_seconds
FROM metadata_key WHERE searchable = 1 ORDER BY COALESCE(plural, name)`)
}

func (s *Store) queryKeys(ctx context.Context, query string) ([]model.Key, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query metadata keys: %w", err)
	}
	defer rows.Close()

	var keys []model.Key
	for rows.Next() {
		var (
			key                       model.Key
			plural                    sql.NullString
			allowMultiple, searchable int
			cacheSeconds              int64
		)
		if err := rows.Scan(&key.ID, &key.Name, &plural, &allowMultiple, &searchable, &cacheSeconds); err != nil {
			return nil, fmt.Errorf("scan metadata key: %w", err)
		}
		key.Plural = plural.String
		key.AllowMultiple = allowMultiple != 0
		key.Searchable = searchable != 0
		key.CacheDuration = secondsToDuration(cacheSeconds)
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
