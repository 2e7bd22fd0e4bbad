// Package store persists station data in SQLite and serves it to schedule
// assembly: metadata and credit rows for the resolvers, raw timeslots, the
// term calendar, and metadata search.
//
// Subject kinds map onto tables through a fixed registry. Each kind has one
// metadata table per strand, plus package entry and credit tables where the
// kind supports them. Table names are never built from caller input.
//
// Instants are stored as fixed-width UTC text so that SQL comparisons order
// them correctly. Readers use Open; bulk writers such as the seeder use
// OpenWriter, which also takes an exclusive file lock.
package store
