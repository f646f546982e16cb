package config

import (
	"fmt"
	"maps"
	"os"

	env "github.com/Netflix/go-env"
)

// environment mirrors the variables set by the container deployment. Only
// variables present in the process environment override file values.
type environment struct {
	QueueURL           string `env:"TASK_QUEUE_URL"`
	ReceiveWaitSeconds int    `env:"TASK_QUEUE_RECEIVE_TIMEOUT"`
	SourceDir          string `env:"DATA_DIR"`
	WorkDir            string `env:"WORK_DIR"`
	APIDomain          string `env:"API_DOMAIN"`
	EmailSource        string `env:"NOTIFICATIONS_EMAIL"`
	LogLevel           string `env:"LOG_LEVEL"`
	LogFormat          string `env:"LOG_FORMAT"`
	UsePathStyle       bool   `env:"S3_USE_PATH_STYLE"`
	ManifestSchema     string `env:"MANIFEST_SCHEMA"`
}

func (c *Config) applyEnv() error {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return c.applyEnvSet(es)
}

// applyEnvSet overrides fields for every variable present in es. Unmarshal
// consumes the keys it reads, so it works on a copy and presence is checked
// against es itself.
func (c *Config) applyEnvSet(es env.EnvSet) error {
	var vars environment
	if err := env.Unmarshal(maps.Clone(es), &vars); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	set := func(key string) bool {
		_, ok := es[key]
		return ok
	}
	if set("TASK_QUEUE_URL") {
		c.Queue.URL = vars.QueueURL
	}
	if set("TASK_QUEUE_RECEIVE_TIMEOUT") {
		c.Queue.ReceiveWaitSeconds = vars.ReceiveWaitSeconds
	}
	if set("DATA_DIR") {
		c.Paths.SourceDir = vars.SourceDir
	}
	if set("WORK_DIR") {
		c.Paths.WorkDir = vars.WorkDir
	}
	if set("API_DOMAIN") {
		c.Email.APIDomain = vars.APIDomain
	}
	if set("NOTIFICATIONS_EMAIL") {
		c.Email.Source = vars.EmailSource
	}
	if set("LOG_LEVEL") {
		c.Logging.Level = vars.LogLevel
	}
	if set("LOG_FORMAT") {
		c.Logging.Format = vars.LogFormat
	}
	if set("S3_USE_PATH_STYLE") {
		c.Storage.UsePathStyle = vars.UsePathStyle
	}
	if set("MANIFEST_SCHEMA") {
		c.Manifest.Schema = vars.ManifestSchema
	}
	return nil
}
