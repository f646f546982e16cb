package manifest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"gostjobs/internal/services"
)

var (
	ErrEmptyValue  = errors.New("required value is empty")
	ErrInvalidPath = errors.New("destination path is not a valid archive entry name")
	ErrFieldCount  = errors.New("wrong number of fields")
)

// Entry is one validated manifest row.
type Entry struct {
	Identifier      string
	DestinationPath string
	Metadata        map[string]string
	Line            int
}

// RowError identifies the manifest row that failed validation.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("manifest line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("manifest line %d: column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Option customizes a Reader.
type Option func(*options)

type options struct {
	capture io.Writer
}

// WithCapture copies the raw manifest bytes to w as they are consumed.
func WithCapture(w io.Writer) Option {
	return func(o *options) {
		o.capture = w
	}
}

// Reader lazily yields manifest entries in file order.
type Reader struct {
	schema Schema
	csv    *csv.Reader
	header []string
	closer io.Closer
	err    error
}

// NewReader reads the header row from r and prepares to stream entries.
// A leading byte order mark is discarded.
func NewReader(r io.Reader, schema Schema, opts ...Option) (*Reader, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	source := r
	if o.capture != nil {
		source = io.TeeReader(r, o.capture)
	}

	decoded := transform.NewReader(source, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Version: schema.Version, Missing: append([]string(nil), schema.Required...)}
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if missing := schema.missingColumns(header); len(missing) > 0 {
		return nil, &SchemaError{Version: schema.Version, Missing: missing}
	}

	reader := &Reader{schema: schema, csv: cr, header: header}
	if c, ok := r.(io.Closer); ok {
		reader.closer = c
	}
	return reader, nil
}

// Open streams the manifest object at bucket/key from store.
func Open(ctx context.Context, store ObjectOpener, bucket, key string, schema Schema, opts ...Option) (*Reader, error) {
	body, err := store.Open(ctx, bucket, key)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "manifest", "open", fmt.Sprintf("s3://%s/%s", bucket, key), err)
	}
	reader, err := NewReader(body, schema, opts...)
	if err != nil {
		_ = body.Close()
		return nil, services.Wrap(services.ErrValidation, "manifest", "read header", fmt.Sprintf("s3://%s/%s", bucket, key), err)
	}
	reader.closer = body
	return reader, nil
}

// ObjectOpener returns a streaming body for an object.
type ObjectOpener interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Header returns the trimmed header row.
func (r *Reader) Header() []string {
	return append([]string(nil), r.header...)
}

// Next returns the next entry, io.EOF at the end of the manifest, or a
// *RowError. Errors are sticky.
func (r *Reader) Next() (Entry, error) {
	if r.err != nil {
		return Entry{}, r.err
	}
	entry, err := r.next()
	if err != nil {
		r.err = err
	}
	return entry, err
}

func (r *Reader) next() (Entry, error) {
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Entry{}, io.EOF
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			if errors.Is(parseErr.Err, csv.ErrFieldCount) {
				return Entry{}, &RowError{Line: parseErr.StartLine, Err: ErrFieldCount}
			}
			return Entry{}, &RowError{Line: parseErr.StartLine, Err: parseErr.Err}
		}
		return Entry{}, fmt.Errorf("read manifest: %w", err)
	}
	line, _ := r.csv.FieldPos(0)

	entry := Entry{Line: line, Metadata: make(map[string]string, len(record))}
	values := make(map[string]string, len(record))
	for i, name := range r.header {
		values[name] = record[i]
	}
	for _, name := range r.schema.Required {
		if strings.TrimSpace(values[name]) == "" {
			return Entry{}, &RowError{Line: line, Column: name, Err: ErrEmptyValue}
		}
	}
	for name, value := range values {
		switch name {
		case r.schema.IdentifierColumn:
			entry.Identifier = strings.TrimSpace(value)
		case r.schema.PathColumn:
			entry.DestinationPath = value
		default:
			entry.Metadata[name] = value
		}
	}
	if !validDestination(entry.DestinationPath) {
		return Entry{}, &RowError{Line: line, Column: r.schema.PathColumn, Err: ErrInvalidPath}
	}
	return entry, nil
}

// Close releases the underlying stream when the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func validDestination(p string) bool {
	if i := strings.IndexByte(p, 0); i >= 0 {
		p = p[:i]
	}
	p = strings.ReplaceAll(p, `\`, "/")
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return false
	}
	trimmed := strings.TrimPrefix(path.Clean(p), "/")
	return trimmed != ".." && !strings.HasPrefix(trimmed, "../")
}
