package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateFiling(); err != nil {
		return err
	}
	if err := c.validateStatus(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	// Startup cleanup deletes old PNGs from staging, so it must not reach
	// unfiled screenshots or filed evidence.
	for _, other := range []struct {
		key  string
		path string
	}{
		{"paths.watch_dir", c.Paths.WatchDir},
		{"paths.output_dir", c.Paths.OutputDir},
	} {
		if other.path == "" {
			continue
		}
		inside, err := isWithin(c.Paths.StagingDir, other.path)
		if err != nil {
			return fmt.Errorf("compare paths.staging_dir with %s: %w", other.key, err)
		}
		if inside {
			return fmt.Errorf("paths.staging_dir %q must not be %s or inside it", c.Paths.StagingDir, other.key)
		}
	}
	return nil
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

func (c *Config) validateWatch() error {
	if len(c.Watch.Extensions) == 0 {
		return errors.New("watch.extensions must list at least one extension")
	}
	if c.Watch.Poll && c.Watch.PollIntervalMS <= 0 {
		return errors.New("watch.poll_interval_ms must be positive when polling")
	}
	return nil
}

func (c *Config) validateFiling() error {
	if c.Filing.LockRetries < 1 {
		return errors.New("filing.lock_retries must be at least 1")
	}
	if c.Filing.SettleDelayMS < 0 {
		return errors.New("filing.settle_delay_ms must not be negative")
	}
	if c.Filing.LockRetryDelayMS < 0 {
		return errors.New("filing.lock_retry_delay_ms must not be negative")
	}
	return nil
}

func (c *Config) validateStatus() error {
	if c.Status.MaxLines < 1 {
		return errors.New("status.max_lines must be at least 1")
	}
	if c.Status.RefreshIntervalMS < 1 {
		return errors.New("status.refresh_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validatePreview() error {
	if c.Preview.Enabled && c.Preview.Bind == "" {
		return errors.New("preview.bind must be set when preview is enabled")
	}
	return nil
}

func (c *Config) validateManifest() error {
	if !c.Manifest.Enabled {
		return nil
	}
	if c.Manifest.FileName == "" || filepath.Base(c.Manifest.FileName) != c.Manifest.FileName {
		return fmt.Errorf("manifest.file_name must be a plain file name, got %q", c.Manifest.FileName)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
