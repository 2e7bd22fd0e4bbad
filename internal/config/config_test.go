package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"lass/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lass.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvDataDir, "")
	t.Setenv(config.EnvTimezone, "")
	t.Chdir(t.TempDir())

	cfg, src, err := config.Load("")
	require.NoError(t, err)
	require.False(t, src.Found)
	require.Equal(t, filepath.Join(home, ".config", "lass", "config.toml"), src.Path)

	dataDir := filepath.Join(home, ".local", "share", "lass")
	require.Equal(t, dataDir, cfg.Paths.DataDir)
	require.Equal(t, filepath.Join(dataDir, "lass.db"), cfg.DatabasePath())
	require.Equal(t, "Europe/London", cfg.Time.Timezone)
	require.Equal(t, 7, cfg.Time.ScheduleStartHour)
	require.NotEmpty(t, cfg.Blocks.Range)

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		require.DirExists(t, dir)
	}
}

func TestLoadFindsProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConfigPath, "")
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("lass.toml", []byte("[time]\nschedule_start_hour = 6\n"), 0o644))

	cfg, src, err := config.Load("")
	require.NoError(t, err)
	require.True(t, src.Found)
	require.Equal(t, "lass.toml", filepath.Base(src.Path))
	require.Equal(t, 6, cfg.Time.ScheduleStartHour)
}

func TestLoadHonoursConfigEnvVar(t *testing.T) {
	path := writeConfig(t, "[logging]\nformat = \"JSON\"\nlevel = \"Debug\"\n")
	t.Setenv(config.EnvConfigPath, path)

	cfg, src, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Source{Path: path, Found: true}, src)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadReplacesBlockRules(t *testing.T) {
	t.Setenv(config.EnvTimezone, "")
	path := writeConfig(t, `
[time]
timezone = "America/New_York"
schedule_start_hour = 6
second_year_terms = ["Spring", " spring ", "summer", ""]

[[blocks.range]]
hour = 6
minute = 30
block = "breakfast"

[[blocks.name]]
pattern = " late* "
block = ""

[blocks.types.breakfast]
label = "Breakfast"
`)

	cfg, src, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, src.Found)
	require.Equal(t, path, src.Path)
	require.Equal(t, "America/New_York", cfg.Time.Timezone)
	require.Equal(t, []string{"spring", "summer"}, cfg.Time.SecondYearTerms)

	blocks := cfg.BlockConfig()
	require.Equal(t, []config.RangeBlock{{Hour: 6, Minute: 30, Block: "breakfast"}}, blocks.RangeBlocks)
	require.Equal(t, []config.NameBlock{{Pattern: "late*"}}, blocks.NameBlocks)
	require.Equal(t, map[string]map[string]string{"breakfast": {"label": "Breakfast"}}, blocks.Blocks)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "[time]\ntimezone = \"Europe/London\"\nstart_hour = 6\n")
	_, _, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}

func TestEnvVarFallbacks(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(config.EnvTimezone, "Europe/Paris")
	t.Setenv(config.EnvDataDir, dataDir)

	cfg := config.Default()
	cfg.Paths.DataDir = ""
	raw, err := toml.Marshal(cfg)
	require.NoError(t, err)

	loaded, _, err := config.Load(writeConfig(t, string(raw)))
	require.NoError(t, err)
	require.Equal(t, "Europe/Paris", loaded.Time.Timezone)
	require.Equal(t, dataDir, loaded.Paths.DataDir)
}

func TestWriteSample(t *testing.T) {
	t.Setenv(config.EnvTimezone, "")
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")

	target, err := config.WriteSample(path, false)
	require.NoError(t, err)
	require.Equal(t, path, target)

	_, err = config.WriteSample(path, false)
	require.True(t, errors.Is(err, config.ErrSampleExists), "got %v", err)
	_, err = config.WriteSample(path, true)
	require.NoError(t, err)

	cfg, src, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, src.Found)
	require.Len(t, cfg.Blocks.Range, 3)

	filler := cfg.FillerConfig()
	require.Equal(t, "jukebox", filler.Block)
	require.Equal(t, "Jukebox", filler.Metadata["text"]["title"])
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"start hour", func(c *config.Config) { c.Time.ScheduleStartHour = 24 }, "schedule_start_hour"},
		{"timezone", func(c *config.Config) { c.Time.Timezone = "Mars/Olympus" }, "unknown zone"},
		{"range hour", func(c *config.Config) { c.Blocks.Range[0].Hour = 25 }, "blocks.range[0]: hour"},
		{"range minute", func(c *config.Config) { c.Blocks.Range[0].Minute = 60 }, "blocks.range[0]: minute"},
		{"range order", func(c *config.Config) {
			c.Blocks.Range[0], c.Blocks.Range[1] = c.Blocks.Range[1], c.Blocks.Range[0]
		}, "ascending"},
		{"empty pattern", func(c *config.Config) { c.Blocks.Name[0].Pattern = "" }, "pattern must be set"},
		{"service override", func(c *config.Config) { c.Service.Override = "offline" }, "service.override"},
		{"cache seconds", func(c *config.Config) { c.Metadata.DefaultCacheSeconds = -1 }, "default_cache_seconds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := config.Default()
	cfg.Time.ScheduleStartHour = -1
	cfg.Metadata.DefaultCacheSeconds = -5

	err := cfg.Validate()
	require.ErrorContains(t, err, "schedule_start_hour")
	require.ErrorContains(t, err, "default_cache_seconds")
}
