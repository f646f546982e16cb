package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"gostjobs/internal/config"
	"gostjobs/internal/logging"
	"gostjobs/internal/preflight"
	"gostjobs/internal/services"
	"gostjobs/internal/staging"
	"gostjobs/internal/workflow"
)

// ErrAlreadyRunning is returned when another worker holds the lock.
var ErrAlreadyRunning = errors.New("another arpa-exporter instance is already running")

// Runner is the worker loop driven by the daemon.
type Runner interface {
	Run(ctx context.Context) error
	Status() workflow.StatusSummary
}

// Daemon enforces single-instance execution of the worker loop.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	runner   Runner
	lockPath string
	running  atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	LockFilePath string
}

// New constructs a daemon around runner.
func New(cfg *config.Config, runner Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and workflow runner")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		runner:   runner,
		lockPath: lockPath,
	}, nil
}

// AcquireLock takes the single-instance lock at path without blocking. It
// returns ErrAlreadyRunning when another process holds it. Anything that
// writes temp archives into the work directory must hold this lock, since
// the daemon sweeps that directory on start.
func AcquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return lock, nil
}

// Run acquires the lock, verifies preflight checks, and runs the worker until
// ctx is cancelled. The lock is released on return.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "daemon", "prepare directories", "", err)
	}

	lock, err := AcquireLock(d.lockPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	cleanup := staging.CleanStale(ctx, d.cfg.Paths.WorkDir, workflow.TempFilePatterns(), 0, d.logger)
	if len(cleanup.Removed) > 0 || len(cleanup.Errors) > 0 {
		d.logger.Info("work directory swept",
			logging.Int("removed", len(cleanup.Removed)),
			logging.Int("errors", len(cleanup.Errors)),
		)
	}

	results := preflight.RunAll(ctx, d.cfg)
	for _, r := range results {
		d.logger.Debug("preflight check", logging.String("check", r.Name), logging.Bool("passed", r.Passed), logging.String("detail", r.Detail))
	}
	if failed := preflight.Failed(results); len(failed) > 0 {
		logging.ErrorWithContext(d.logger, "preflight checks failed", "preflight_failed",
			logging.Int("failed_checks", len(failed)),
			logging.String(logging.FieldErrorHint, "run arpa-exporter preflight for details"),
		)
		return services.Wrap(services.ErrConfiguration, "daemon", "preflight", preflight.Summary(results), nil)
	}

	d.running.Store(true)
	defer d.running.Store(false)
	d.logger.Info("arpa-exporter daemon started", logging.String("lock", d.lockPath))
	defer d.logger.Info("arpa-exporter daemon stopped")

	return d.runner.Run(ctx)
}

// Status reports daemon and worker state.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Workflow:     d.runner.Status(),
		LockFilePath: d.lockPath,
	}
}
