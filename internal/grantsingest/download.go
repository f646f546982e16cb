package grantsingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"gostjobs/internal/logging"
	"gostjobs/internal/storage"
)

// Uploader stores a stream in object storage.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, opts ...storage.UploadOption) error
}

// Downloader copies the daily Grants.gov extract into S3.
type Downloader struct {
	HTTPClient *http.Client
	Store      Uploader
	BaseURL    string
	Bucket     string
	Logger     *slog.Logger
}

// Handle streams the archive for event into the destination bucket.
func (d *Downloader) Handle(ctx context.Context, event ScheduledEvent) error {
	source := event.GrantsURL(d.BaseURL)
	key := event.DestinationKey()
	logger := logging.WithContext(ctx, logging.NewComponentLogger(d.Logger, "grants-download")).With(
		logging.String("db_date", event.Timestamp.Format("2006-01-02")),
		logging.String("source", source),
		logging.String("destination_bucket", d.Bucket),
		logging.String("destination_key", key),
	)

	client := d.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	logger.Debug("starting remote file download")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		logging.ErrorWithContext(logger, "error configuring download request for source archive", "grants_download_failed", logging.Error(err))
		return fmt.Errorf("configure download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		logging.ErrorWithContext(logger, "error initiating download request for source archive", "grants_download_failed", logging.Error(err))
		return fmt.Errorf("initiate download request: %w", err)
	}
	defer resp.Body.Close()
	if err := ValidateDownloadResponse(resp); err != nil {
		logging.ErrorWithContext(logger, "error downloading source archive", "grants_download_failed", logging.Error(err))
		return fmt.Errorf("download source archive: %w", err)
	}
	logger = logger.With(logging.Int64("source_size_bytes", resp.ContentLength))

	logger.Debug("streaming remote file to S3")
	if err := d.Store.Upload(ctx, d.Bucket, key, resp.Body, storage.WithContentType("application/zip")); err != nil {
		logging.ErrorWithContext(logger, "error uploading source archive to S3", "grants_upload_failed", logging.Error(err))
		return fmt.Errorf("upload source archive: %w", err)
	}

	logger.Info("finished transferring source file to S3")
	return nil
}

// ValidateDownloadResponse rejects anything but a 200 response carrying a zip.
func ValidateDownloadResponse(r *http.Response) error {
	if r.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected http response status: %s", r.Status)
	}
	if contentType := r.Header.Get("Content-Type"); contentType != "application/zip" {
		return fmt.Errorf("unexpected http response Content-Type header: %s", contentType)
	}
	return nil
}
