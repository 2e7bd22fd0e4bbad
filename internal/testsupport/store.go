package testsupport

import (
	"context"
	_ "embed"
	"testing"

	"lass/internal/config"
	"lass/internal/store"
)

//go:embed testdata/station.toml
var stationFixture string

// StationFixture returns the TOML of a small station: a week of timeslots
// from Monday 2024-01-08, the 2023/24 terms, packages, and credits.
func StationFixture() string {
	return stationFixture
}

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SeedStation loads the station fixture into st.
func SeedStation(t testing.TB, st *store.Store) {
	t.Helper()

	fixture, err := store.ParseFixture([]byte(stationFixture))
	if err != nil {
		t.Fatalf("parse station fixture: %v", err)
	}
	if err := st.Seed(context.Background(), fixture); err != nil {
		t.Fatalf("seed station fixture: %v", err)
	}
}

// MustOpenStation opens a store seeded with the station fixture.
func MustOpenStation(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st := MustOpenStore(t, cfg)
	SeedStation(t, st)
	return st
}
