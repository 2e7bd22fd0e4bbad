package testsupport

import (
	"path/filepath"
	"testing"

	"lass/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Time.Timezone = "Europe/London"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTimezone sets the station timezone.
func WithTimezone(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Time.Timezone = name
	}
}

// WithStartHour sets the hour schedule days begin.
func WithStartHour(hour int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Time.ScheduleStartHour = hour
	}
}

// WithBlocks replaces the block rules.
func WithBlocks(blocks config.Blocks) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Blocks = blocks
	}
}

// WithServiceOverride forces the station service type.
func WithServiceOverride(override string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Service.Override = override
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
