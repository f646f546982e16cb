package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"gostjobs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "uploads")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Queue.URL = "https://sqs.us-west-2.amazonaws.com/000000000000/arpa-exporter-tasks"
	cfgVal.Queue.ReceiveWaitSeconds = 0
	cfgVal.Storage.UsePathStyle = true
	cfgVal.Email.Source = "grants@example.org"
	cfgVal.Email.APIDomain = "reporter.example.org"
	cfgVal.Workflow.ErrorRetryInterval = 1

	for _, dir := range []string{cfgVal.Paths.SourceDir, cfgVal.Paths.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:   t,
		cfg: &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSourceExtension overrides the extension appended to upload ids.
func WithSourceExtension(ext string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.SourceExtension = ext
	}
}

// WithIncludeManifest toggles embedding the manifest snapshot in archives.
func WithIncludeManifest(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.IncludeManifest = enabled
	}
}

// WithEmailDisabled turns off SES delivery.
func WithEmailDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Email.Enabled = false
	}
}
