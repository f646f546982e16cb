package config

const (
	defaultConfigPath         = "~/.config/arpa-exporter/config.toml"
	projectConfigName         = "arpa-exporter.toml"
	lockFileName              = "arpa-exporter.lock"
	defaultSourceDir          = "~/.local/share/arpa-exporter/uploads"
	defaultWorkDir            = "~/.local/share/arpa-exporter/work"
	defaultReceiveWaitSeconds = 20
	maxReceiveWaitSeconds     = 20
	defaultPartSizeMiB        = 5
	minPartSizeMiB            = 5
	defaultConcurrency        = 5
	defaultSourceExtension    = ".xlsm"
	defaultManifestSchema     = "v2"
	defaultToolName           = "ARPA Reporter"
	defaultErrorRetryInterval = 10
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			WorkDir:   defaultWorkDir,
		},
		Queue: Queue{
			ReceiveWaitSeconds: defaultReceiveWaitSeconds,
		},
		Storage: Storage{
			PartSizeMiB: defaultPartSizeMiB,
			Concurrency: defaultConcurrency,
		},
		Archive: Archive{
			SourceExtension: defaultSourceExtension,
		},
		Manifest: Manifest{
			Schema: defaultManifestSchema,
		},
		Email: Email{
			Enabled:  true,
			ToolName: defaultToolName,
		},
		Workflow: Workflow{
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
