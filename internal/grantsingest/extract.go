package grantsingest

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/hashicorp/go-multierror"

	"gostjobs/internal/logging"
	"gostjobs/internal/storage"
)

const (
	archiveSuffix  = "/grants.gov/archive.zip"
	extractName    = "extract.xml"
	xmlContentType = "application/xml"
)

// ErrNoXMLMember is returned when a source archive holds no .xml file.
var ErrNoXMLMember = errors.New("archive contains no xml member")

// ObjectStore downloads and uploads S3 objects.
type ObjectStore interface {
	Uploader
	DownloadToFile(ctx context.Context, bucket, key string, f *os.File) (bool, error)
}

// Extractor unpacks Grants.gov archives that land in the source bucket.
type Extractor struct {
	Store        ObjectStore
	SourceBucket string
	// WorkDir holds temporary downloads; empty means os.TempDir.
	WorkDir string
	Logger  *slog.Logger
}

// ExtractKey returns the key the XML extract is written to for an archive key.
func ExtractKey(archiveKey string) string {
	return path.Join(path.Dir(archiveKey), extractName)
}

// Handle processes every matching record in event. Failures are collected so
// one bad record does not hide the others.
func (x *Extractor) Handle(ctx context.Context, event events.S3Event) error {
	base := logging.WithContext(ctx, logging.NewComponentLogger(x.Logger, "grants-extract"))

	var result *multierror.Error
	for i, record := range event.Records {
		logger := base.With(logging.Int("record", i), logging.String("event_name", record.EventName))

		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			logging.ErrorWithContext(logger, "error decoding S3 object key", "grants_extract_failed", logging.Error(err))
			result = multierror.Append(result, fmt.Errorf("decode key %q: %w", record.S3.Object.Key, err))
			continue
		}
		bucket := record.S3.Bucket.Name
		if bucket != x.SourceBucket || !strings.HasSuffix(key, archiveSuffix) {
			logger.Debug("skipping unrelated S3 record", logging.String("bucket", bucket), logging.String("key", key))
			continue
		}

		logger = logger.With(logging.String("source_bucket", bucket), logging.String("source_key", key))
		if err := x.extract(ctx, bucket, key, logger); err != nil {
			logging.ErrorWithContext(logger, "error extracting grants archive", "grants_extract_failed", logging.Error(err))
			result = multierror.Append(result, fmt.Errorf("s3://%s/%s: %w", bucket, key, err))
		}
	}
	return result.ErrorOrNil()
}

func (x *Extractor) extract(ctx context.Context, bucket, key string, logger *slog.Logger) error {
	tmp, err := os.CreateTemp(x.WorkDir, "grants-archive-*.zip")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	found, err := x.Store.DownloadToFile(ctx, bucket, key, tmp)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("source archive not found")
	}
	info, err := tmp.Stat()
	if err != nil {
		return fmt.Errorf("stat downloaded archive: %w", err)
	}

	zr, err := zip.NewReader(tmp, info.Size())
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	member := firstXMLMember(zr)
	if member == nil {
		return ErrNoXMLMember
	}

	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", member.Name, err)
	}
	defer rc.Close()

	dest := ExtractKey(key)
	logger = logger.With(
		logging.String("member", member.Name),
		logging.Int64("member_size_bytes", int64(member.UncompressedSize64)),
		logging.String("destination_key", dest),
	)
	logger.Info("streaming xml extract to S3")
	err = x.Store.Upload(ctx, bucket, dest, rc,
		storage.WithContentType(xmlContentType),
		storage.WithProgress(func(chunk, total int64) {
			logger.Debug("extract upload progress", logging.Int64("chunk_bytes", chunk), logging.Int64("total_bytes", total))
		}),
	)
	if err != nil {
		return err
	}
	logger.Info("finished extracting grants archive")
	return nil
}

func firstXMLMember(zr *zip.Reader) *zip.File {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), ".xml") {
			return f
		}
	}
	return nil
}
