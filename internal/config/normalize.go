package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables that fill settings the file leaves blank. The
// timezone variable wins over the file so a whole deployment can be shifted.
const (
	EnvDataDir  = "LASS_DATA_DIR"
	EnvTimezone = "LASS_TIMEZONE"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(firstSet(c.Paths.DataDir, os.Getenv(EnvDataDir), defaultDataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(firstSet(c.Paths.LogDir, defaultLogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Time.Timezone = firstSet(os.Getenv(EnvTimezone), c.Time.Timezone, defaultTimezone)
	c.Time.SecondYearTerms = lowerUnique(c.Time.SecondYearTerms)

	// An empty [blocks] section means the station relies on the defaults.
	if len(c.Blocks.Range) == 0 && len(c.Blocks.Name) == 0 && len(c.Blocks.Types) == 0 {
		c.Blocks = defaultBlocks()
	}
	for i := range c.Blocks.Range {
		c.Blocks.Range[i].Block = strings.TrimSpace(c.Blocks.Range[i].Block)
	}
	for i, rule := range c.Blocks.Name {
		c.Blocks.Name[i] = NameBlock{Pattern: strings.TrimSpace(rule.Pattern), Block: strings.TrimSpace(rule.Block)}
	}
	if c.Blocks.Types == nil {
		c.Blocks.Types = map[string]map[string]string{}
	}
	c.Filler.Block = strings.TrimSpace(c.Filler.Block)

	c.Service.Override = strings.ToLower(strings.TrimSpace(c.Service.Override))
	c.Service.Maintenance.Message = strings.TrimSpace(c.Service.Maintenance.Message)

	if format := strings.ToLower(strings.TrimSpace(c.Logging.Format)); format == "json" {
		c.Logging.Format = format
	} else {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(firstSet(c.Logging.Level, defaultLogLevel))
	return nil
}

// firstSet returns the first value that is not blank, trimmed.
func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func lowerUnique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
