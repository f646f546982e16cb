package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeQueue()
	c.normalizeStorage()
	c.normalizeArchive()
	c.normalizeEmail()
	c.normalizeLogging()
	c.Manifest.Schema = strings.ToLower(strings.TrimSpace(c.Manifest.Schema))
	if c.Manifest.Schema == "" {
		c.Manifest.Schema = defaultManifestSchema
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		c.Paths.SourceDir = defaultSourceDir
	}
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeQueue() {
	c.Queue.URL = strings.TrimSpace(c.Queue.URL)
}

func (c *Config) normalizeStorage() {
	if c.Storage.PartSizeMiB == 0 {
		c.Storage.PartSizeMiB = defaultPartSizeMiB
	}
	if c.Storage.Concurrency == 0 {
		c.Storage.Concurrency = defaultConcurrency
	}
}

func (c *Config) normalizeArchive() {
	ext := strings.TrimSpace(c.Archive.SourceExtension)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Archive.SourceExtension = ext
}

func (c *Config) normalizeEmail() {
	c.Email.Source = strings.TrimSpace(c.Email.Source)
	c.Email.APIDomain = strings.TrimSpace(c.Email.APIDomain)
	c.Email.ToolName = strings.TrimSpace(c.Email.ToolName)
	if c.Email.ToolName == "" {
		c.Email.ToolName = defaultToolName
	}
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
