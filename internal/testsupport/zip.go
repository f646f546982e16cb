package testsupport

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"testing"
)

// ZipEntry is a named payload for WriteZip.
type ZipEntry struct {
	Name    string
	Content string
}

// WriteZip creates a zip archive at path containing entries in order.
func WriteZip(t testing.TB, path string, entries ...ZipEntry) {
	t.Helper()

	if err := os.WriteFile(path, ZipBytes(t, entries...), 0o644); err != nil {
		t.Fatalf("write zip %s: %v", path, err)
	}
}

// ZipBytes returns an in-memory zip archive containing entries in order.
func ZipBytes(t testing.TB, entries ...ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", entry.Name, err)
		}
		if _, err := io.WriteString(w, entry.Content); err != nil {
			t.Fatalf("write zip entry %s: %v", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// ReadZip returns entry names in order and their contents.
func ReadZip(t testing.TB, path string) ([]string, map[string]string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read zip %s: %v", path, err)
	}
	return ReadZipBytes(t, data)
}

// ReadZipBytes decodes an in-memory zip archive.
func ReadZipBytes(t testing.TB, data []byte) ([]string, map[string]string) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := make([]string, 0, len(zr.File))
	contents := make(map[string]string, len(zr.File))
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", file.Name, err)
		}
		body, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", file.Name, err)
		}
		names = append(names, file.Name)
		contents[file.Name] = string(body)
	}
	return names, contents
}

// ZipCRCs returns the stored CRC32 of each entry keyed by name.
func ZipCRCs(t testing.TB, path string) map[string]uint32 {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip %s: %v", path, err)
	}
	defer zr.Close()
	crcs := make(map[string]uint32, len(zr.File))
	for _, file := range zr.File {
		crcs[file.Name] = file.CRC32
	}
	return crcs
}
