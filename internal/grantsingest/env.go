package grantsingest

import (
	"errors"
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
)

// Environment is the configuration shared by the ingest functions.
type Environment struct {
	LogLevel               string `env:"LOG_LEVEL,default=info"`
	LogFormat              string `env:"LOG_FORMAT,default=json"`
	GrantsGovBaseURL       string `env:"GRANTS_GOV_BASE_URL"`
	Bucket                 string `env:"GRANTS_SOURCE_DATA_BUCKET_NAME,required=true"`
	UsePathStyle           bool   `env:"S3_USE_PATH_STYLE,default=false"`
	DownloadTimeoutSeconds int    `env:"DOWNLOAD_TIMEOUT_SECONDS,default=900"`
	Extras                 env.EnvSet
}

// LoadEnvironment reads the process environment.
func LoadEnvironment() (Environment, error) {
	var e Environment
	es, err := env.UnmarshalFromEnviron(&e)
	if err != nil {
		return Environment{}, fmt.Errorf("configure environment variables: %w", err)
	}
	e.Extras = es
	return e, nil
}

// ParseEnvironment decodes es without consulting the process environment.
func ParseEnvironment(es env.EnvSet) (Environment, error) {
	var e Environment
	if err := env.Unmarshal(es, &e); err != nil {
		return Environment{}, fmt.Errorf("configure environment variables: %w", err)
	}
	e.Extras = es
	return e, nil
}

// RequireBaseURL reports an error when the Grants.gov base URL is unset.
func (e Environment) RequireBaseURL() error {
	if e.GrantsGovBaseURL == "" {
		return errors.New("GRANTS_GOV_BASE_URL is required")
	}
	return nil
}

// DownloadTimeout returns the HTTP timeout for the source download.
func (e Environment) DownloadTimeout() time.Duration {
	if e.DownloadTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(e.DownloadTimeoutSeconds) * time.Second
}
