// Package config loads, normalizes, and validates lass configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LASS_TIMEZONE. Besides paths and logging, the Config carries the schedule
// block rules and filler settings that schedule assembly consumes through
// BlockConfig and FillerConfig.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
