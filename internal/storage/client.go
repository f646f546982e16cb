package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"gostjobs/internal/logging"
	"gostjobs/internal/services"
)

// Options tunes the S3 client and transfer managers.
type Options struct {
	UsePathStyle bool
	PartSize     int64
	Concurrency  int
	Logger       *slog.Logger
}

// Client performs S3 transfers.
type Client struct {
	api        *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	logger     *slog.Logger
}

// New builds a Client from cfg.
func New(cfg aws.Config, opts Options) *Client {
	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
	})
	uploader := manager.NewUploader(api, func(u *manager.Uploader) {
		if opts.PartSize > 0 {
			u.PartSize = opts.PartSize
		}
		if opts.Concurrency > 0 {
			u.Concurrency = opts.Concurrency
		}
	})
	downloader := manager.NewDownloader(api, func(d *manager.Downloader) {
		if opts.PartSize > 0 {
			d.PartSize = opts.PartSize
		}
		if opts.Concurrency > 0 {
			d.Concurrency = opts.Concurrency
		}
	})
	return &Client{
		api:        api,
		uploader:   uploader,
		downloader: downloader,
		logger:     logging.NewComponentLogger(opts.Logger, "storage"),
	}
}

// DownloadToFile writes bucket/key into f. A missing object is not an error:
// f is truncated and found is false.
func (c *Client) DownloadToFile(ctx context.Context, bucket, key string, f *os.File) (bool, error) {
	logger := logging.WithContext(ctx, c.logger).With(logging.String("bucket", bucket), logging.String("key", key))

	n, err := c.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if IsNotFound(err) {
		if terr := f.Truncate(0); terr != nil {
			return false, fmt.Errorf("reset download target: %w", terr)
		}
		logger.Info("no existing s3 object found")
		return false, nil
	}
	if err != nil {
		return false, services.Wrap(services.ErrTransport, "storage", "download", fmt.Sprintf("s3://%s/%s", bucket, key), err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return true, fmt.Errorf("rewind download target: %w", err)
	}
	logger.Info("downloaded existing s3 object", logging.Int64("size_bytes", n))
	return true, nil
}

// Open returns a streaming reader for bucket/key. The caller must close it.
func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		marker := services.ErrTransport
		if IsNotFound(err) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "storage", "get object", fmt.Sprintf("s3://%s/%s", bucket, key), err)
	}
	return out.Body, nil
}

// UploadOption customizes a single upload.
type UploadOption func(*uploadConfig)

type uploadConfig struct {
	contentType string
	progress    func(chunk, total int64)
}

// WithContentType sets the stored object's Content-Type.
func WithContentType(contentType string) UploadOption {
	return func(c *uploadConfig) {
		c.contentType = contentType
	}
}

// WithProgress reports every chunk read from the body along with the
// cumulative byte count.
func WithProgress(fn func(chunk, total int64)) UploadOption {
	return func(c *uploadConfig) {
		c.progress = fn
	}
}

// Upload stores body at bucket/key using a managed multipart upload. Objects
// are always encrypted at rest with AES256.
func (c *Client) Upload(ctx context.Context, bucket, key string, body io.Reader, opts ...UploadOption) error {
	var cfg uploadConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.progress != nil {
		body = &progressReader{r: body, fn: cfg.progress}
	}

	input := &s3.PutObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}
	if cfg.contentType != "" {
		input.ContentType = aws.String(cfg.contentType)
	}
	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return services.Wrap(services.ErrTransport, "storage", "upload", fmt.Sprintf("s3://%s/%s", bucket, key), err)
	}
	logging.WithContext(ctx, c.logger).Info("uploaded s3 object", logging.String("bucket", bucket), logging.String("key", key))
	return nil
}

// IsNotFound reports whether err means the requested object does not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() != "" {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		default:
			return false
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}

type progressReader struct {
	r     io.Reader
	fn    func(chunk, total int64)
	total int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.total += int64(n)
		p.fn(int64(n), p.total)
	}
	return n, err
}
