package workflow

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"gostjobs/internal/config"
	"gostjobs/internal/logging"
	"gostjobs/internal/notifications"
	"gostjobs/internal/queue"
	"gostjobs/internal/storage"
)

// Queue delivers and acknowledges task messages.
type Queue interface {
	Receive(ctx context.Context) (*queue.Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Store moves archives and manifests to and from object storage.
type Store interface {
	DownloadToFile(ctx context.Context, bucket, key string, f *os.File) (bool, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, bucket, key string, body io.Reader, opts ...storage.UploadOption) error
}

// Manager coordinates queue processing for the export worker.
type Manager struct {
	cfg      *config.Config
	queue    Queue
	store    Store
	notifier notifications.Service
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	processed int
	failed    int
	lastErr   error
	lastTask  *queue.Task
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithClock overrides the time source used for snapshot names.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a new workflow manager.
func NewManager(cfg *config.Config, q Queue, store Store, notifier notifications.Service, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:      cfg,
		queue:    q,
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
