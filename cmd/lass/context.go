package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"lass/internal/config"
	"lass/internal/logging"
	"lass/internal/schedule"
	"lass/internal/store"
	"lass/internal/timectx"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool
	nowFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool, nowFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
		nowFlag:    nowFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// now returns the --now override or the wall clock.
func (c *commandContext) now() (func() time.Time, error) {
	if c.nowFlag == nil || strings.TrimSpace(*c.nowFlag) == "" {
		return time.Now, nil
	}
	fixed, err := time.Parse(time.RFC3339, strings.TrimSpace(*c.nowFlag))
	if err != nil {
		return nil, fmt.Errorf("parse --now: %w", err)
	}
	return func() time.Time { return fixed }, nil
}

func (c *commandContext) timeContext() (*timectx.Context, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	tc, err := timectx.FromConfig(cfg.Time)
	if err != nil {
		return nil, err
	}
	now, err := c.now()
	if err != nil {
		return nil, err
	}
	tc.Now = now
	return tc, nil
}

// withStore opens the database for reading and closes it after fn.
func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *commandContext) assembler(st *store.Store) (*schedule.Assembler, *timectx.Context, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	tc, err := c.timeContext()
	if err != nil {
		return nil, nil, err
	}
	asm, err := schedule.NewAssembler(schedule.Deps{
		Timeslots: st,
		Metadata:  st,
		Credits:   st,
		Blocks:    cfg.BlockConfig(),
		Filler:    cfg.FillerConfig(),
		Time:      tc,
		Logger:    c.ensureLogger(),
	})
	if err != nil {
		return nil, nil, err
	}
	return asm, tc, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
