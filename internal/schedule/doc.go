// Package schedule assembles the station schedule.
//
// Raw timeslots from storage are annotated with metadata and credits,
// assigned display blocks, padded with filler so the schedule has no gaps,
// and optionally arranged into a weekly table. An Assembler holds the
// collaborators; a Schedule is one lazily assembled window.
package schedule
