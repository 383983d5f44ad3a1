package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Detector.Binary = strings.TrimSpace(c.Detector.Binary)
	if c.Detector.Binary == "" {
		c.Detector.Binary = defaultDetectorBinary
	}
	c.Embedder.Binary = strings.TrimSpace(c.Embedder.Binary)
	if c.Embedder.Binary == "" {
		c.Embedder.Binary = defaultEmbedderBinary
	}
	c.Embedder.ExcludeSubstring = strings.TrimSpace(c.Embedder.ExcludeSubstring)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
