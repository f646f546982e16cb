package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReplaceFile renames src over dst and syncs the parent directory so the
// replacement survives a crash. src must live in the same directory as dst;
// a rewrite is always staged beside the file it replaces.
func ReplaceFile(src, dst string) error {
	if filepath.Dir(filepath.Clean(src)) != filepath.Dir(filepath.Clean(dst)) {
		return fmt.Errorf("replace %s: staged file %s is not in the same directory", dst, src)
	}
	if err := os.Rename(src, dst); err != nil {
		return err
	}
	return syncDir(filepath.Dir(dst))
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync directory %s: %w", dir, err)
	}
	return nil
}
