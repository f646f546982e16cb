package workflow

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gostjobs/internal/archive"
	"gostjobs/internal/logging"
	"gostjobs/internal/manifest"
	"gostjobs/internal/queue"
	"gostjobs/internal/services"
	"gostjobs/internal/storage"
)

const (
	archiveContentType = "application/zip"
	snapshotTimeLayout = "2006-01-02-15-04-05"
	tempArchivePattern = "export-*.zip"
)

// TempFilePatterns matches every file a task may leave in the work directory
// if the process dies mid-task: the downloaded archive and its staged rewrite.
func TempFilePatterns() []string {
	return []string{tempArchivePattern, "." + tempArchivePattern + "*"}
}

// SnapshotName returns the archive entry used for a manifest copy taken at t.
func SnapshotName(t time.Time) string {
	return fmt.Sprintf("metadata/upload_metadata_%s.csv", t.UTC().Format(snapshotTimeLayout))
}

func (m *Manager) processTask(ctx context.Context, task queue.Task, logger *slog.Logger) error {
	schema, err := manifest.LookupSchema(m.cfg.Manifest.Schema)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "workflow", "lookup manifest schema", "", err)
	}

	tmp, err := os.CreateTemp(m.cfg.Paths.WorkDir, tempArchivePattern)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "workflow", "create temp archive", m.cfg.Paths.WorkDir, err)
	}
	zipPath := tmp.Name()
	defer os.Remove(zipPath)

	logger.Info("downloading existing archive")
	found, err := m.store.DownloadToFile(ctx, task.S3.Bucket, task.S3.ZipKey, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}
	if found {
		logger.Info("existing archive downloaded")
	} else {
		logger.Info("no existing archive found; a new one will be created")
	}

	var capture bytes.Buffer
	var readerOpts []manifest.Option
	if m.cfg.Archive.IncludeManifest {
		readerOpts = append(readerOpts, manifest.WithCapture(&capture))
	}
	entries, err := manifest.Open(ctx, m.store, task.S3.Bucket, task.S3.MetadataKey, schema, readerOpts...)
	if err != nil {
		return err
	}
	defer entries.Close()

	zipArchive, err := archive.Open(zipPath)
	if err != nil {
		return services.Wrap(services.ErrArchiveWrite, "workflow", "open archive", "", err)
	}

	result, reconcileErr := archive.Reconcile(ctx, zipArchive, entries, archive.ReconcileOptions{
		SourceDir:       m.cfg.Paths.SourceDir,
		SourceExtension: m.cfg.Archive.SourceExtension,
		Logger:          logger,
	})
	if reconcileErr == nil && result.Modified() && m.cfg.Archive.IncludeManifest {
		name := SnapshotName(m.now())
		if err := zipArchive.Add(name, bytes.NewReader(capture.Bytes()), m.now()); err != nil {
			reconcileErr = services.Wrap(services.ErrArchiveWrite, "workflow", "add manifest snapshot", name, err)
		} else {
			logger.Info("added manifest snapshot to archive", logging.String("entry_path", name))
		}
	}
	closeErr := zipArchive.Close()
	if reconcileErr != nil {
		if closeErr != nil {
			logger.Warn("closing archive after failed reconciliation", logging.Error(closeErr))
		}
		return reconcileErr
	}
	if closeErr != nil {
		return services.Wrap(services.ErrArchiveWrite, "workflow", "finalize archive", "", closeErr)
	}

	if result.Modified() {
		if err := m.uploadArchive(ctx, task, zipPath, logger); err != nil {
			return err
		}
	} else {
		logger.Info("archive unchanged; skipping upload")
	}

	if _, err := m.notifier.NotifyExportReady(ctx, task.UserEmail, int64(task.OrganizationID)); err != nil {
		return fmt.Errorf("notify %s: %w", task.UserEmail, err)
	}
	return nil
}

func (m *Manager) uploadArchive(ctx context.Context, task queue.Task, zipPath string, logger *slog.Logger) error {
	f, err := os.Open(zipPath)
	if err != nil {
		return services.Wrap(services.ErrArchiveWrite, "workflow", "reopen archive", zipPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return services.Wrap(services.ErrArchiveWrite, "workflow", "stat archive", zipPath, err)
	}
	logger.Info("uploading updated archive", logging.Int64("size_bytes", info.Size()))

	err = m.store.Upload(ctx, task.S3.Bucket, task.S3.ZipKey, f,
		storage.WithContentType(archiveContentType),
		storage.WithProgress(func(chunk, total int64) {
			logger.Debug("archive upload progress", logging.Int64("chunk_bytes", chunk), logging.Int64("total_bytes", total))
		}),
	)
	if err != nil {
		logging.ErrorWithContext(logger, "archive upload failed", "archive_upload_failed", logging.Error(err))
		return err
	}
	logger.Info("archive uploaded")
	return nil
}
