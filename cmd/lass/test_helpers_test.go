package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lass/internal/config"
	"lass/internal/testsupport"
)

type cliTestEnv struct {
	cfg         *config.Config
	configPath  string
	fixturePath string
}

// setupCLITestEnv writes a config pointing at temp directories and seeds the
// station fixture through the db seed command.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("LASS_TIMEZONE", "")
	t.Setenv("LASS_DATA_DIR", "")

	env := &cliTestEnv{
		cfg:         cfg,
		configPath:  filepath.Join(base, "lass.toml"),
		fixturePath: filepath.Join(base, "station.toml"),
	}
	writeTestConfig(t, env.configPath, cfg)
	testsupport.WriteFile(t, env.fixturePath, testsupport.StationFixture())

	if _, _, err := runCLI(t, []string{"db", "seed", env.fixturePath}, env.configPath); err != nil {
		t.Fatalf("db seed: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[time]\ntimezone = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Time.Timezone,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
