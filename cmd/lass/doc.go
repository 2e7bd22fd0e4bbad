// Package main hosts the lass CLI entrypoint and command graph.
//
// Commands read the schedule database through internal/store and assemble
// schedules with internal/schedule. This package only resolves configuration,
// opens the store, and renders results as tables or JSON.
package main
