package config

import "strings"

func (c *Config) normalize() error {
	for _, p := range []*string{&c.Paths.WatchDir, &c.Paths.OutputDir, &c.Paths.StagingDir, &c.Paths.LogDir} {
		expanded, err := expandPath(strings.TrimSpace(*p))
		if err != nil {
			return err
		}
		*p = expanded
	}

	seen := make(map[string]struct{}, len(c.Watch.Extensions))
	exts := make([]string, 0, len(c.Watch.Extensions))
	for _, ext := range c.Watch.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Watch.Extensions = exts

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Manifest.FileName = strings.TrimSpace(c.Manifest.FileName)
	c.Preview.Bind = strings.TrimSpace(c.Preview.Bind)
	return nil
}
