package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gostjobs/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableDirectory_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if result := CheckReadableDirectory("source", dir); !result.Passed {
		t.Fatalf("expected read-only dir to pass read check, got: %s", result.Detail)
	}
	if result := CheckDirectoryAccess("work", dir); result.Passed {
		t.Fatal("expected read-only dir to fail write check")
	}
}

func TestCheckQueueURL(t *testing.T) {
	tests := []struct {
		url  string
		pass bool
	}{
		{"https://sqs.us-west-2.amazonaws.com/000000000000/tasks", true},
		{"http://localhost:4566/000000000000/tasks", true},
		{"", false},
		{"sqs.us-west-2.amazonaws.com/tasks", false},
		{"ftp://example.org/queue", false},
	}
	for _, tc := range tests {
		if got := CheckQueueURL(tc.url); got.Passed != tc.pass {
			t.Errorf("CheckQueueURL(%q) passed=%v, want %v (%s)", tc.url, got.Passed, tc.pass, got.Detail)
		}
	}
}

func TestRunAll_EmailChecksGated(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Email.Enabled = true
	cfg.Email.APIDomain = ""

	results := RunAll(context.Background(), cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results with email enabled, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "API domain" {
		t.Fatalf("expected only API domain to fail, got %+v", failed)
	}
	if Summary(results) != "API domain: missing" {
		t.Fatalf("unexpected summary %q", Summary(results))
	}

	cfg.Email.Enabled = false
	results = RunAll(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results with email disabled, got %d", len(results))
	}
	if len(Failed(results)) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", Failed(results))
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %+v", results)
	}
}
