package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

var serviceOverrides = []string{"normal", "sustainer", "emergency", "down"}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if c.Time.Timezone == "" {
		fail("time.timezone must be set")
	} else if _, err := time.LoadLocation(c.Time.Timezone); err != nil {
		fail("time.timezone: unknown zone %q", c.Time.Timezone)
	}
	if c.Time.ScheduleStartHour < 0 || c.Time.ScheduleStartHour > 23 {
		fail("time.schedule_start_hour must be between 0 and 23")
	}

	previous := -1
	for i, rule := range c.Blocks.Range {
		if rule.Hour < 0 || rule.Hour > 23 {
			fail("blocks.range[%d]: hour must be between 0 and 23", i)
		}
		if rule.Minute < 0 || rule.Minute > 59 {
			fail("blocks.range[%d]: minute must be between 0 and 59", i)
		}
		offset := rule.Hour*60 + rule.Minute
		if offset <= previous {
			fail("blocks.range[%d]: range blocks must be in ascending time order", i)
		}
		previous = offset
	}
	for i, rule := range c.Blocks.Name {
		if rule.Pattern == "" {
			fail("blocks.name[%d]: pattern must be set", i)
		}
	}

	if c.Service.Override != "" && !contains(serviceOverrides, c.Service.Override) {
		fail("service.override must be one of normal, sustainer, emergency or down (got %q)", c.Service.Override)
	}
	if c.Metadata.DefaultCacheSeconds < 0 {
		fail("metadata.default_cache_seconds must be >= 0")
	}
	return errors.Join(problems...)
}
