package store

import (
	"errors"
	"fmt"

	"lass/internal/model"
)

// ErrNoRelationship is returned when a subject kind has no table for the
// requested strand or for credits.
var ErrNoRelationship = errors.New("no such relationship")

// subjectTables names the tables holding one subject kind's data. Table names
// only ever come from this registry, never from caller input.
type subjectTables struct {
	table          string
	strands        map[string]string
	packageEntries string
	credits        string
}

var registry = map[model.Kind]subjectTables{
	model.KindShow: {
		table:          "show",
		strands:        map[string]string{model.StrandText: "show_text_metadata", model.StrandImage: "show_image_metadata"},
		packageEntries: "show_package_entry",
		credits:        "show_credit",
	},
	model.KindSeason: {
		table:          "season",
		strands:        map[string]string{model.StrandText: "season_text_metadata", model.StrandImage: "season_image_metadata"},
		packageEntries: "season_package_entry",
		credits:        "season_credit",
	},
	model.KindTimeslot: {
		table:          "timeslot",
		strands:        map[string]string{model.StrandText: "timeslot_text_metadata", model.StrandImage: "timeslot_image_metadata"},
		packageEntries: "timeslot_package_entry",
		credits:        "timeslot_credit",
	},
	model.KindPodcast: {
		table:          "podcast",
		strands:        map[string]string{model.StrandText: "podcast_text_metadata", model.StrandImage: "podcast_image_metadata"},
		packageEntries: "podcast_package_entry",
		credits:        "podcast_credit",
	},
	model.KindPackage: {
		table:   "package",
		strands: map[string]string{model.StrandText: "package_text_metadata", model.StrandImage: "package_image_metadata"},
	},
}

func tablesFor(kind model.Kind) (subjectTables, error) {
	tables, ok := registry[kind]
	if !ok {
		return subjectTables{}, fmt.Errorf("%w: unknown kind %q", ErrNoRelationship, kind)
	}
	return tables, nil
}

func metadataTable(kind model.Kind, strand string) (string, error) {
	tables, err := tablesFor(kind)
	if err != nil {
		return "", err
	}
	table, ok := tables.strands[strand]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s metadata", ErrNoRelationship, kind, strand)
	}
	return table, nil
}

func creditTable(kind model.Kind) (string, error) {
	tables, err := tablesFor(kind)
	if err != nil {
		return "", err
	}
	if tables.credits == "" {
		return "", fmt.Errorf("%w: %s has no credits", ErrNoRelationship, kind)
	}
	return tables.credits, nil
}

// packageMetadataTable returns the package table holding strand, used for
// package defaults of another kind.
func packageMetadataTable(strand string) (string, bool) {
	table, ok := registry[model.KindPackage].strands[strand]
	return table, ok
}
