package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gostjobs/internal/logging"
	"gostjobs/internal/queue"
	"gostjobs/internal/services"
)

// Run handles tasks until ctx is cancelled. Cancellation is only observed
// between tasks. A failed task leaves its message on the queue and the loop
// pauses for the configured retry interval before polling again.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("worker started", logging.String("queue_url", m.cfg.Queue.URL))
	defer m.logger.Info("worker stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}
		err := m.HandleOne(ctx)
		if err == nil {
			continue
		}
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return nil
		}
		logging.ErrorWithContext(m.logger, "task handling failed; message left for redelivery", "task_failed",
			logging.Error(err),
			logging.Bool("retryable", services.IsRetryable(err)),
			logging.Duration("retry_in", m.cfg.ErrorRetryDelay()),
			logging.String(logging.FieldErrorHint, "inspect the task logs for the failing step"),
		)
		m.waitForRetryOrShutdown(ctx)
	}
}

// HandleOne receives at most one message and processes it. An empty batch
// returns nil. Messages that fail to decode are logged and left on the queue
// for the redrive policy; they do not produce an error.
func (m *Manager) HandleOne(ctx context.Context) error {
	msg, err := m.queue.Receive(ctx)
	if err != nil {
		m.setLastError(err)
		return err
	}
	if msg == nil {
		return nil
	}

	ctx = services.WithTaskID(ctx, uuid.NewString())
	ctx = services.WithRequestID(ctx, msg.ID)
	logger := logging.WithContext(ctx, m.logger).With(
		logging.String("receipt_handle", msg.ReceiptHandle),
		logging.Int("receive_count", msg.ReceiveCount),
	)

	task, err := queue.DecodeTask([]byte(msg.Body))
	if err != nil {
		logging.ErrorWithContext(logger, "invalid message received from queue", "task_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "message will be retried until the redrive policy moves it"),
		)
		return nil
	}
	m.setLastTask(task)

	logger = logger.With(
		logging.String("bucket", task.S3.Bucket),
		logging.String("zip_key", task.S3.ZipKey),
		logging.String("metadata_key", task.S3.MetadataKey),
		logging.Int64("organization_id", int64(task.OrganizationID)),
	)

	work := context.WithoutCancel(ctx)
	start := time.Now()
	if err := m.processTask(work, task, logger); err != nil {
		m.recordFailure(err)
		return err
	}
	if err := m.queue.Delete(work, msg.ReceiptHandle); err != nil {
		m.recordFailure(err)
		return err
	}
	m.recordSuccess()
	logger.Info("task complete", logging.Duration("elapsed", time.Since(start)))
	return nil
}

func (m *Manager) waitForRetryOrShutdown(ctx context.Context) {
	timer := time.NewTimer(m.cfg.ErrorRetryDelay())
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
