package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"auditsnap/internal/app"
	"auditsnap/internal/config"
	"auditsnap/internal/logging"
	"auditsnap/internal/session"
)

type sessionFlags struct {
	year      string
	project   string
	auditType string
	sequence  string
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	overrides    *sessionFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, overrides *sessionFlags) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		overrides:    overrides,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = level
			}
		}
		c.config, c.configPath, c.configExists = cfg, path, exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// applySessionFlags layers the session flags over the loaded [session]
// section.
func (c *commandContext) applySessionFlags(cmd *cobra.Command) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("year") {
		cfg.Session.Year = c.overrides.year
	}
	if flags.Changed("project") {
		cfg.Session.Project = c.overrides.project
	}
	if flags.Changed("audit-type") {
		cfg.Session.AuditType = c.overrides.auditType
	}
	if flags.Changed("sequence") {
		seq, err := session.ParseSequence(c.overrides.sequence)
		if err != nil {
			return err
		}
		cfg.Session.StartSequence = seq
	}
	return nil
}

func (c *commandContext) sessionSpec() session.Spec {
	cfg, _ := c.ensureConfig()
	if cfg == nil {
		return session.Spec{}
	}
	return session.Spec{
		Year:      cfg.Session.Year,
		Project:   cfg.Session.Project,
		AuditType: cfg.Session.AuditType,
		Sequence:  cfg.Session.StartSequence,
	}
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newApp() (*app.App, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(cfg, logger)
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
