package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"lass/internal/model"
	"lass/internal/transient"
)

// Fixture is a TOML description of station data loaded by Seed. Keys, credit
// types, and show types are referenced by name; every other record by id.
type Fixture struct {
	Keys           []FixtureKey          `toml:"keys" validate:"dive"`
	CreditTypes    []FixtureCreditType   `toml:"credit_types" validate:"dive"`
	ShowTypes      []FixtureShowType     `toml:"show_types" validate:"dive"`
	People         []FixturePerson       `toml:"people" validate:"dive"`
	Terms          []FixtureTerm         `toml:"terms" validate:"dive"`
	Packages       []FixturePackage      `toml:"packages" validate:"dive"`
	Shows          []FixtureShow         `toml:"shows" validate:"dive"`
	Seasons        []FixtureSeason       `toml:"seasons" validate:"dive"`
	Timeslots      []FixtureTimeslot     `toml:"timeslots" validate:"dive"`
	Podcasts       []FixturePodcast      `toml:"podcasts" validate:"dive"`
	Metadata       []FixtureMetadata     `toml:"metadata" validate:"dive"`
	PackageEntries []FixturePackageEntry `toml:"package_entries" validate:"dive"`
	Credits        []FixtureCredit       `toml:"credits" validate:"dive"`
}

type FixtureKey struct {
	Name          string `toml:"name" validate:"required"`
	Plural        string `toml:"plural"`
	AllowMultiple bool   `toml:"allow_multiple"`
	Searchable    bool   `toml:"searchable"`
	CacheSeconds  int64  `toml:"cache_seconds"`
}

type FixtureCreditType struct {
	Name     string `toml:"name" validate:"required"`
	Plural   string `toml:"plural"`
	InByline bool   `toml:"in_byline"`
}

// FixtureShowType defaults to public. Set Private for unlisted types.
type FixtureShowType struct {
	Name        string `toml:"name" validate:"required"`
	Private     bool   `toml:"private"`
	Collapsible bool   `toml:"collapsible"`
	NoShowDB    bool   `toml:"no_showdb_entry"`
	NoMessages  bool   `toml:"no_messages"`
}

type FixturePerson struct {
	ID        int64  `toml:"id" validate:"gt=0"`
	FirstName string `toml:"first_name"`
	LastName  string `toml:"last_name" validate:"required"`
}

type FixtureTerm struct {
	ID     int64     `toml:"id" validate:"gt=0"`
	Name   string    `toml:"name" validate:"required"`
	Start  time.Time `toml:"start" validate:"required"`
	Finish time.Time `toml:"finish" validate:"required"`
}

type FixturePackage struct {
	ID            int64      `toml:"id" validate:"gt=0"`
	Name          string     `toml:"name" validate:"required"`
	Description   string     `toml:"description"`
	Weight        int        `toml:"weight"`
	EffectiveFrom *time.Time `toml:"effective_from"`
	EffectiveTo   *time.Time `toml:"effective_to"`
}

type FixtureShow struct {
	ID      int64  `toml:"id" validate:"gt=0"`
	Type    string `toml:"type" validate:"required"`
	Creator int64  `toml:"creator" validate:"gte=0"`
}

type FixtureSeason struct {
	ID   int64 `toml:"id" validate:"gt=0"`
	Show int64 `toml:"show" validate:"gt=0"`
	Term int64 `toml:"term" validate:"gte=0"`
}

type FixtureTimeslot struct {
	ID     int64     `toml:"id" validate:"gt=0"`
	Season int64     `toml:"season" validate:"gt=0"`
	Start  time.Time `toml:"start" validate:"required"`
	Finish time.Time `toml:"finish" validate:"required"`
}

type FixturePodcast struct {
	ID int64 `toml:"id" validate:"gt=0"`
}

// FixtureMetadata is one metadata item. Strand defaults to text.
type FixtureMetadata struct {
	Kind          string     `toml:"kind" validate:"required"`
	ID            int64      `toml:"id" validate:"gt=0"`
	Strand        string     `toml:"strand" validate:"omitempty,oneof=text image"`
	Key           string     `toml:"key" validate:"required"`
	Value         string     `toml:"value"`
	EffectiveFrom *time.Time `toml:"effective_from"`
	EffectiveTo   *time.Time `toml:"effective_to"`
}

type FixturePackageEntry struct {
	Kind          string     `toml:"kind" validate:"required"`
	ID            int64      `toml:"id" validate:"gt=0"`
	Package       int64      `toml:"package" validate:"gt=0"`
	EffectiveFrom *time.Time `toml:"effective_from"`
	EffectiveTo   *time.Time `toml:"effective_to"`
}

type FixtureCredit struct {
	Kind          string     `toml:"kind" validate:"required"`
	ID            int64      `toml:"id" validate:"gt=0"`
	Person        int64      `toml:"person" validate:"gt=0"`
	Type          string     `toml:"type" validate:"required"`
	EffectiveFrom *time.Time `toml:"effective_from"`
	EffectiveTo   *time.Time `toml:"effective_to"`
}

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture TOML, rejecting unknown fields.
func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, err
	}
	return &fixture, nil
}

// Validate checks required fields and references that can be checked
// without a database, reporting every problem found.
func (f *Fixture) Validate() error {
	problems := fieldProblems(fixtureValidator.Struct(f))
	for i, ts := range f.Timeslots {
		if !ts.Finish.After(ts.Start) {
			problems = append(problems, fmt.Errorf("timeslots[%d]: finish must be after start", i))
		}
	}
	for i, term := range f.Terms {
		if !term.Finish.After(term.Start) {
			problems = append(problems, fmt.Errorf("terms[%d]: finish must be after start", i))
		}
	}
	for i, item := range f.Metadata {
		if _, err := model.ParseKind(item.Kind); err != nil {
			problems = append(problems, fmt.Errorf("metadata[%d]: %w", i, err))
		}
		if err := spanOf(item.EffectiveFrom, item.EffectiveTo).Validate(); err != nil {
			problems = append(problems, fmt.Errorf("metadata[%d]: %w", i, err))
		}
	}
	for i, entry := range f.PackageEntries {
		if err := spanOf(entry.EffectiveFrom, entry.EffectiveTo).Validate(); err != nil {
			problems = append(problems, fmt.Errorf("package_entries[%d]: %w", i, err))
		}
	}
	for i, credit := range f.Credits {
		if err := spanOf(credit.EffectiveFrom, credit.EffectiveTo).Validate(); err != nil {
			problems = append(problems, fmt.Errorf("credits[%d]: %w", i, err))
		}
	}
	return errors.Join(problems...)
}

var fixtureValidator = newFixtureValidator()

// newFixtureValidator reports fields by their TOML names so problems read
// like the fixture file: "timeslots[0].season".
func newFixtureValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldProblems(err error) []error {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		if err != nil {
			return []error{err}
		}
		return nil
	}
	problems := make([]error, 0, len(invalid))
	for _, fe := range invalid {
		field := strings.TrimPrefix(fe.Namespace(), "Fixture.")
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Errorf("%s: must be set", field))
		case "oneof":
			problems = append(problems, fmt.Errorf("%s: must be one of %s", field, fe.Param()))
		case "gt":
			problems = append(problems, fmt.Errorf("%s: must be greater than %s", field, fe.Param()))
		default:
			problems = append(problems, fmt.Errorf("%s: fails %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return problems
}

func spanOf(from, to *time.Time) transient.Span {
	return transient.Span{From: from, To: to}
}

// Seed loads fixture into the database inside one transaction. Nothing is
// written when any record fails.
func (s *Store) Seed(ctx context.Context, fixture *Fixture) error {
	if fixture == nil {
		return errors.New("seed: nil fixture")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin seed tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		seeder := &seeder{tx: tx, keys: map[string]int64{}, creditTypes: map[string]int64{}, showTypes: map[string]int64{}}
		if err := seeder.run(ctx, fixture); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit seed: %w", err)
		}
		return nil
	})
}

type seeder struct {
	tx          *sql.Tx
	keys        map[string]int64
	creditTypes map[string]int64
	showTypes   map[string]int64
}

func (sd *seeder) run(ctx context.Context, f *Fixture) error {
	steps := []struct {
		name string
		fn   func(context.Context, *Fixture) error
	}{
		{"keys", sd.seedKeys},
		{"credit types", sd.seedCreditTypes},
		{"show types", sd.seedShowTypes},
		{"people", sd.seedPeople},
		{"terms", sd.seedTerms},
		{"packages", sd.seedPackages},
		{"shows", sd.seedShows},
		{"seasons", sd.seedSeasons},
		{"timeslots", sd.seedTimeslots},
		{"podcasts", sd.seedPodcasts},
		{"metadata", sd.seedMetadata},
		{"package entries", sd.seedPackageEntries},
		{"credits", sd.seedCredits},
	}
	for _, step := range steps {
		if err := step.fn(ctx, f); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}
	return nil
}

func (sd *seeder) insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := sd.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (sd *seeder) seedKeys(ctx context.Context, f *Fixture) error {
	for _, k := range f.Keys {
		id, err := sd.insert(ctx,
			"INSERT INTO metadata_key (name, plural, allow_multiple, searchable, cache_seconds) VALUES (?, ?, ?, ?, ?)",
			k.Name, nullableString(k.Plural), boolToInt(k.AllowMultiple), boolToInt(k.Searchable), k.CacheSeconds)
		if err != nil {
			return fmt.Errorf("key %q: %w", k.Name, err)
		}
		sd.keys[k.Name] = id
	}
	return nil
}

func (sd *seeder) seedCreditTypes(ctx context.Context, f *Fixture) error {
	for _, ct := range f.CreditTypes {
		id, err := sd.insert(ctx,
			"INSERT INTO credit_type (name, plural, in_byline) VALUES (?, ?, ?)",
			ct.Name, nullableString(ct.Plural), boolToInt(ct.InByline))
		if err != nil {
			return fmt.Errorf("credit type %q: %w", ct.Name, err)
		}
		sd.creditTypes[ct.Name] = id
	}
	return nil
}

func (sd *seeder) seedShowTypes(ctx context.Context, f *Fixture) error {
	for _, st := range f.ShowTypes {
		id, err := sd.insert(ctx,
			"INSERT INTO show_type (name, public, has_showdb_entry, collapsible, can_be_messaged) VALUES (?, ?, ?, ?, ?)",
			st.Name, boolToInt(!st.Private), boolToInt(!st.NoShowDB), boolToInt(st.Collapsible), boolToInt(!st.NoMessages))
		if err != nil {
			return fmt.Errorf("show type %q: %w", st.Name, err)
		}
		sd.showTypes[st.Name] = id
	}
	return nil
}

func (sd *seeder) seedPeople(ctx context.Context, f *Fixture) error {
	for _, p := range f.People {
		if _, err := sd.insert(ctx, "INSERT INTO person (id, first_name, last_name) VALUES (?, ?, ?)",
			p.ID, p.FirstName, p.LastName); err != nil {
			return fmt.Errorf("person %d: %w", p.ID, err)
		}
	}
	return nil
}

func (sd *seeder) seedTerms(ctx context.Context, f *Fixture) error {
	for _, t := range f.Terms {
		if _, err := sd.insert(ctx, "INSERT INTO term (id, name, start, finish) VALUES (?, ?, ?, ?)",
			nullableID(t.ID), t.Name, formatTime(t.Start), formatTime(t.Finish)); err != nil {
			return fmt.Errorf("term %q: %w", t.Name, err)
		}
	}
	return nil
}

func (sd *seeder) seedPackages(ctx context.Context, f *Fixture) error {
	for _, p := range f.Packages {
		if _, err := sd.insert(ctx,
			"INSERT INTO package (id, name, description, weight, effective_from, effective_to) VALUES (?, ?, ?, ?, ?, ?)",
			p.ID, p.Name, nullableString(p.Description), p.Weight, nullableTime(p.EffectiveFrom), nullableTime(p.EffectiveTo)); err != nil {
			return fmt.Errorf("package %d: %w", p.ID, err)
		}
	}
	return nil
}

func (sd *seeder) seedShows(ctx context.Context, f *Fixture) error {
	for _, sh := range f.Shows {
		typeID, ok := sd.showTypes[sh.Type]
		if !ok {
			return fmt.Errorf("show %d: unknown show type %q", sh.ID, sh.Type)
		}
		if _, err := sd.insert(ctx, "INSERT INTO show (id, show_type_id, creator_id) VALUES (?, ?, ?)",
			sh.ID, typeID, nullableID(sh.Creator)); err != nil {
			return fmt.Errorf("show %d: %w", sh.ID, err)
		}
	}
	return nil
}

func (sd *seeder) seedSeasons(ctx context.Context, f *Fixture) error {
	for _, se := range f.Seasons {
		if _, err := sd.insert(ctx, "INSERT INTO season (id, show_id, term_id) VALUES (?, ?, ?)",
			se.ID, se.Show, nullableID(se.Term)); err != nil {
			return fmt.Errorf("season %d: %w", se.ID, err)
		}
	}
	return nil
}

func (sd *seeder) seedTimeslots(ctx context.Context, f *Fixture) error {
	for _, ts := range f.Timeslots {
		if _, err := sd.insert(ctx, "INSERT INTO timeslot (id, season_id, start, finish) VALUES (?, ?, ?, ?)",
			ts.ID, ts.Season, formatTime(ts.Start), formatTime(ts.Finish)); err != nil {
			return fmt.Errorf("timeslot %d: %w", ts.ID, err)
		}
	}
	return nil
}

func (sd *seeder) seedPodcasts(ctx context.Context, f *Fixture) error {
	for _, p := range f.Podcasts {
		if _, err := sd.insert(ctx, "INSERT INTO podcast (id) VALUES (?)", p.ID); err != nil {
			return fmt.Errorf("podcast %d: %w", p.ID, err)
		}
	}
	return nil
}

func (sd *seeder) seedMetadata(ctx context.Context, f *Fixture) error {
	for i, item := range f.Metadata {
		strand := item.Strand
		if strand == "" {
			strand = model.StrandText
		}
		table, err := metadataTable(model.Kind(item.Kind), strand)
		if err != nil {
			return fmt.Errorf("metadata[%d]: %w", i, err)
		}
		keyID, ok := sd.keys[item.Key]
		if !ok {
			return fmt.Errorf("metadata[%d]: unknown key %q", i, item.Key)
		}
		query := fmt.Sprintf("INSERT INTO %s (subject_id, key_id, value, effective_from, effective_to) VALUES (?, ?, ?, ?, ?)", table)
		if _, err := sd.insert(ctx, query, item.ID, keyID, item.Value,
			nullableTime(item.EffectiveFrom), nullableTime(item.EffectiveTo)); err != nil {
			return fmt.Errorf("metadata[%d]: %w", i, err)
		}
	}
	return nil
}

func (sd *seeder) seedPackageEntries(ctx context.Context, f *Fixture) error {
	for i, entry := range f.PackageEntries {
		tables, err := tablesFor(model.Kind(entry.Kind))
		if err != nil {
			return fmt.Errorf("package_entries[%d]: %w", i, err)
		}
		if tables.packageEntries == "" {
			return fmt.Errorf("package_entries[%d]: %w: %s takes no packages", i, ErrNoRelationship, entry.Kind)
		}
		query := fmt.Sprintf("INSERT INTO %s (subject_id, package_id, effective_from, effective_to) VALUES (?, ?, ?, ?)", tables.packageEntries)
		if _, err := sd.insert(ctx, query, entry.ID, entry.Package,
			nullableTime(entry.EffectiveFrom), nullableTime(entry.EffectiveTo)); err != nil {
			return fmt.Errorf("package_entries[%d]: %w", i, err)
		}
	}
	return nil
}

func (sd *seeder) seedCredits(ctx context.Context, f *Fixture) error {
	for i, credit := range f.Credits {
		table, err := creditTable(model.Kind(credit.Kind))
		if err != nil {
			return fmt.Errorf("credits[%d]: %w", i, err)
		}
		typeID, ok := sd.creditTypes[credit.Type]
		if !ok {
			return fmt.Errorf("credits[%d]: unknown credit type %q", i, credit.Type)
		}
		query := fmt.Sprintf("INSERT INTO %s (subject_id, person_id, credit_type_id, effective_from, effective_to) VALUES (?, ?, ?, ?, ?)", table)
		if _, err := sd.insert(ctx, query, credit.ID, credit.Person, typeID,
			nullableTime(credit.EffectiveFrom), nullableTime(credit.EffectiveTo)); err != nil {
			return fmt.Errorf("credits[%d]: %w", i, err)
		}
	}
	return nil
}
