package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains data and log directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Time contains the station's local time settings.
type Time struct {
	Timezone          string   `toml:"timezone"`
	ScheduleStartHour int      `toml:"schedule_start_hour"`
	SecondYearTerms   []string `toml:"second_year_terms"`
}

// RangeBlock activates Block at Hour:Minute local time each day. An empty
// Block ends the previous range block without starting another.
type RangeBlock struct {
	Hour   int    `toml:"hour"`
	Minute int    `toml:"minute"`
	Block  string `toml:"block"`
}

// NameBlock assigns Block to timeslots whose title matches the glob Pattern.
// An empty Block excludes matching timeslots from any block.
type NameBlock struct {
	Pattern string `toml:"pattern"`
	Block   string `toml:"block"`
}

// Blocks contains schedule block rules and display attributes.
type Blocks struct {
	Range []RangeBlock                 `toml:"range"`
	Name  []NameBlock                  `toml:"name"`
	Types map[string]map[string]string `toml:"types"`
}

// FillerMetadata is the static metadata given to synthetic filler timeslots,
// keyed by strand then metadata key.
type FillerMetadata struct {
	Text  map[string]string `toml:"text"`
	Image map[string]string `toml:"image"`
}

// Filler contains configuration for gap-filling timeslots.
type Filler struct {
	Block    string         `toml:"block"`
	Metadata FillerMetadata `toml:"metadata"`
}

// Maintenance contains the site maintenance notice.
type Maintenance struct {
	Active  bool   `toml:"active"`
	Message string `toml:"message"`
}

// Service contains station service state configuration.
type Service struct {
	Override    string      `toml:"override"`
	Maintenance Maintenance `toml:"maintenance"`
}

// Metadata contains metadata resolution settings.
type Metadata struct {
	DefaultCacheSeconds int `toml:"default_cache_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lass.
//
// Configuration sections by subsystem:
//   - Paths: database and log directories
//   - Time: station timezone and schedule day boundaries
//   - Blocks: range and name block rules for schedule annotation
//   - Filler: block and metadata given to gap-filling timeslots
//   - Service: station service override and maintenance notice
//   - Metadata: cache durations reported to downstream caches
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Time     Time     `toml:"time"`
	Blocks   Blocks   `toml:"blocks"`
	Filler   Filler   `toml:"filler"`
	Service  Service  `toml:"service"`
	Metadata Metadata `toml:"metadata"`
	Logging  Logging  `toml:"logging"`
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the schedule database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "lass.db")
}

// LockPath returns the file guarding exclusive database writers.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "lass.lock")
}
