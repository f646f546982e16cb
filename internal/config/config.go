package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	// SourceDir holds previously uploaded spreadsheets named <upload_id><ext>.
	SourceDir string `toml:"source_dir"`
	// WorkDir holds temporary archive copies and the instance lock.
	WorkDir string `toml:"work_dir"`
}

// Queue contains SQS task queue settings.
type Queue struct {
	URL                string `toml:"url"`
	ReceiveWaitSeconds int    `toml:"receive_wait_seconds"`
}

// Storage contains S3 client settings.
type Storage struct {
	UsePathStyle bool `toml:"use_path_style"`
	PartSizeMiB  int  `toml:"part_size_mib"`
	Concurrency  int  `toml:"concurrency"`
}

// Archive contains archive reconciliation settings.
type Archive struct {
	// SourceExtension is appended to upload ids to locate source files. When
	// empty, the extension of each manifest destination path is used instead.
	SourceExtension string `toml:"source_extension"`
	IncludeManifest bool   `toml:"include_manifest"`
}

// Manifest contains CSV manifest parsing settings.
type Manifest struct {
	Schema string `toml:"schema"`
}

// Email contains SES notification settings.
type Email struct {
	Enabled   bool   `toml:"enabled"`
	Source    string `toml:"source"`
	APIDomain string `toml:"api_domain"`
	ToolName  string `toml:"tool_name"`
}

// Workflow contains worker loop timing.
type Workflow struct {
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the exporter worker.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Queue    Queue    `toml:"queue"`
	Storage  Storage  `toml:"storage"`
	Archive  Archive  `toml:"archive"`
	Manifest Manifest `toml:"manifest"`
	Email    Email    `toml:"email"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// overrides are applied after the file is decoded. The returned config has
// all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work directory used for temporary archives.
// The source directory is owned by the upload pipeline and is never created here.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.WorkDir, err)
	}
	return nil
}

// ErrorRetryDelay returns the pause between failed tasks.
func (c *Config) ErrorRetryDelay() time.Duration {
	return time.Duration(c.Workflow.ErrorRetryInterval) * time.Second
}

// ReceiveWait returns the SQS long-poll duration.
func (c *Config) ReceiveWait() time.Duration {
	return time.Duration(c.Queue.ReceiveWaitSeconds) * time.Second
}

// PartSizeBytes returns the multipart upload part size in bytes.
func (c *Config) PartSizeBytes() int64 {
	return int64(c.Storage.PartSizeMiB) * 1024 * 1024
}

// LockPath returns the location of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkDir, lockFileName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
