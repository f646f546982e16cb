package manifest_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gostjobs/internal/manifest"
	"gostjobs/internal/services"
)

func readAll(t *testing.T, r *manifest.Reader) ([]manifest.Entry, error) {
	t.Helper()
	var entries []manifest.Entry
	for {
		entry, err := r.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
}

func TestReaderYieldsEntriesInOrder(t *testing.T) {
	data := "upload_id,path_in_zip,agency_name\n" +
		"u1,2024-Q1/Final Treasury/a.xlsm,Parks\n" +
		"u2,2024-Q1/Not Final Treasury/Valid files/b.xlsm,Roads\n"
	r, err := manifest.NewReader(strings.NewReader(data), manifest.SchemaV2)
	if err != nil {
		t.Fatalf("NewReader returned error: %v", err)
	}

	entries, err := readAll(t, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Identifier != "u1" || entries[0].DestinationPath != "2024-Q1/Final Treasury/a.xlsm" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].Metadata["agency_name"] != "Parks" {
		t.Fatalf("expected metadata pass-through, got %v", entries[0].Metadata)
	}
	if entries[1].Line != 3 {
		t.Fatalf("expected second entry on line 3, got %d", entries[1].Line)
	}
}

func TestReaderStripsByteOrderMark(t *testing.T) {
	data := "\ufeffupload_id,path_in_zip\nu1,a.xlsm\n"
	r, err := manifest.NewReader(strings.NewReader(data), manifest.SchemaV2)
	if err != nil {
		t.Fatalf("NewReader returned error: %v", err)
	}
	if got := r.Header()[0]; got != "upload_id" {
		t.Fatalf("expected BOM to be stripped from header, got %q", got)
	}
}

func TestReaderStopsAtInvalidRow(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
		want   error
	}{
		{"empty identifier", ",c.xlsm", "upload_id", manifest.ErrEmptyValue},
		{"empty path", "u3,", "path_in_zip", manifest.ErrEmptyValue},
		{"escaping path", "u3,../../etc/passwd", "path_in_zip", manifest.ErrInvalidPath},
		{"root path", "u3,/", "path_in_zip", manifest.ErrInvalidPath},
		{"field count", "u3,c.xlsm,extra", "", manifest.ErrFieldCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "upload_id,path_in_zip\nu1,a.xlsm\nu2,b.xlsm\n" + tt.row + "\nu4,d.xlsm\n"
			r, err := manifest.NewReader(strings.NewReader(data), manifest.SchemaV2)
			if err != nil {
				t.Fatalf("NewReader returned error: %v", err)
			}
			entries, err := readAll(t, r)
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries before the error, got %d", len(entries))
			}
			var rowErr *manifest.RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("expected RowError, got %v", err)
			}
			if rowErr.Line != 4 {
				t.Fatalf("expected error on line 4, got %d", rowErr.Line)
			}
			if rowErr.Column != tt.column {
				t.Fatalf("expected column %q, got %q", tt.column, rowErr.Column)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if _, again := r.Next(); again != err {
				t.Fatalf("expected sticky error, got %v", again)
			}
		})
	}
}

func TestReaderRejectsMissingColumns(t *testing.T) {
	_, err := manifest.NewReader(strings.NewReader("upload_id,filename_in_zip\nu1,a.xlsm\n"), manifest.SchemaV2)
	var schemaErr *manifest.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != "path_in_zip" {
		t.Fatalf("unexpected missing columns: %v", schemaErr.Missing)
	}
}

func TestReaderEmptyInput(t *testing.T) {
	if _, err := manifest.NewReader(strings.NewReader(""), manifest.SchemaV2); err == nil {
		t.Fatal("expected error for empty manifest")
	}
}

func TestReaderHeaderOnlyIsEmpty(t *testing.T) {
	r, err := manifest.NewReader(strings.NewReader("upload_id,path_in_zip\n"), manifest.SchemaV2)
	if err != nil {
		t.Fatalf("NewReader returned error: %v", err)
	}
	entries, err := readAll(t, r)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected no entries, got %d err=%v", len(entries), err)
	}
}

func TestLegacySchema(t *testing.T) {
	data := "upload_id,filename_in_zip,directory_location,agency_name,ec_code,reporting_period_name,validity\n" +
		"u1,a.xlsm,Q1/Final Treasury/a.xlsm,Parks,1.1,Q1,valid\n"
	schema, err := manifest.LookupSchema("V1")
	if err != nil {
		t.Fatalf("LookupSchema returned error: %v", err)
	}
	r, err := manifest.NewReader(strings.NewReader(data), schema)
	if err != nil {
		t.Fatalf("NewReader returned error: %v", err)
	}
	entries, err := readAll(t, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].DestinationPath != "Q1/Final Treasury/a.xlsm" {
		t.Fatalf("unexpected destination: %q", entries[0].DestinationPath)
	}
	if entries[0].Metadata["filename_in_zip"] != "a.xlsm" {
		t.Fatalf("expected filename_in_zip metadata, got %v", entries[0].Metadata)
	}
}

func TestLookupSchemaUnknown(t *testing.T) {
	if _, err := manifest.LookupSchema("v3"); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}

func TestCaptureCopiesRawBytes(t *testing.T) {
	data := "\ufeffupload_id,path_in_zip\nu1,a.xlsm\n"
	var captured bytes.Buffer
	r, err := manifest.NewReader(strings.NewReader(data), manifest.SchemaV2, manifest.WithCapture(&captured))
	if err != nil {
		t.Fatalf("NewReader returned error: %v", err)
	}
	if _, err := readAll(t, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.String() != data {
		t.Fatalf("expected raw capture, got %q", captured.String())
	}
}

type fakeOpener struct {
	body   string
	err    error
	closed bool
}

func (f *fakeOpener) Open(context.Context, string, string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &trackingCloser{Reader: strings.NewReader(f.body), onClose: func() { f.closed = true }}, nil
}

type trackingCloser struct {
	io.Reader
	onClose func()
}

func (c *trackingCloser) Close() error {
	c.onClose()
	return nil
}

func TestOpenStreamsFromStore(t *testing.T) {
	store := &fakeOpener{body: "upload_id,path_in_zip\nu1,a.xlsm\n"}
	r, err := manifest.Open(context.Background(), store, "bucket", "key.csv", manifest.SchemaV2)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	entries, err := readAll(t, r)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one entry, got %d err=%v", len(entries), err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !store.closed {
		t.Fatal("expected body to be closed")
	}
}

func TestOpenWrapsErrors(t *testing.T) {
	store := &fakeOpener{err: errors.New("access denied")}
	_, err := manifest.Open(context.Background(), store, "bucket", "key.csv", manifest.SchemaV2)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	store = &fakeOpener{body: "wrong,header\n"}
	_, err = manifest.Open(context.Background(), store, "bucket", "key.csv", manifest.SchemaV2)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !store.closed {
		t.Fatal("expected body to be closed after header failure")
	}
}
