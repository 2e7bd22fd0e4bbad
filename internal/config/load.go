package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig []byte

// EnvConfigPath names a config file when --config is not given.
const EnvConfigPath = "LASS_CONFIG"

// ErrSampleExists is returned by WriteSample when it would replace a file.
var ErrSampleExists = errors.New("config file already exists")

// Source records where a loaded configuration came from. Found is false when
// no file existed and defaults were used; Path is then where lass looked.
type Source struct {
	Path  string
	Found bool
}

// Load reads the configuration at path, or searches for one when path is
// empty, and returns it normalized and validated. A missing file is not an
// error: defaults are used.
func Load(path string) (*Config, Source, error) {
	src, err := locate(path)
	if err != nil {
		return nil, Source{}, err
	}

	cfg := Default()
	if src.Found {
		file, err := os.Open(src.Path)
		if err != nil {
			return nil, src, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := decode(file, &cfg); err != nil {
			return nil, src, fmt.Errorf("parse config %s: %w", src.Path, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, src, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, src, err
	}
	return &cfg, src, nil
}

// decode overlays TOML onto cfg. Block rules are cleared first because array
// tables append to, rather than replace, the defaults.
func decode(r io.Reader, cfg *Config) error {
	cfg.Blocks = Blocks{}
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(cfg)
}

// locate picks the config file: an explicit path, then $LASS_CONFIG, then
// the user config directory, then lass.toml in the working directory.
func locate(path string) (Source, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return Source{}, err
		}
		found, err := isFile(expanded)
		return Source{Path: expanded, Found: found}, err
	}

	fallback, err := DefaultPath()
	if err != nil {
		return Source{}, err
	}
	local, err := filepath.Abs("lass.toml")
	if err != nil {
		return Source{}, err
	}
	for _, candidate := range []string{fallback, local} {
		found, err := isFile(candidate)
		if err != nil {
			return Source{}, err
		}
		if found {
			return Source{Path: candidate, Found: true}, nil
		}
	}
	return Source{Path: fallback}, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	default:
		return !info.IsDir(), nil
	}
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// WriteSample writes the annotated sample configuration to path, or to
// DefaultPath when path is empty, and returns where it went. An existing
// file is only replaced when overwrite is set.
func WriteSample(path string, overwrite bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	target, err := expandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return target, fmt.Errorf("%w at %s (use --overwrite to replace it)", ErrSampleExists, target)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("check config path: %w", err)
		}
	}
	if err := atomic.WriteFile(target, bytes.NewReader(sampleConfig)); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return target, nil
}

// expandPath resolves a leading ~ to the home directory and makes the path
// absolute.
func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	return absolute, nil
}
