package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gostjobs/internal/logging"
)

// CleanStaleResult contains the outcome of a stale file cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes regular files in workDir whose names match any of
// patterns and whose modification time is older than maxAge. A maxAge of
// zero removes every match. Subdirectories are never descended into.
func CleanStale(ctx context.Context, workDir string, patterns []string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	workDir = strings.TrimSpace(workDir)
	if workDir == "" || len(patterns) == 0 {
		return result
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: workDir, Error: err})
		}
		return result
	}

	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "staging"))
	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.Type().IsRegular() || !matchesAny(entry.Name(), patterns) {
			continue
		}

		filePath := filepath.Join(workDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: filePath, Error: err})
			continue
		}
		if maxAge > 0 && !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filePath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: filePath, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale work file", "staging_cleanup_failed",
				logging.String("path", filePath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check work_dir permissions"),
			)
			continue
		}
		result.Removed = append(result.Removed, filePath)
		logger.Info("removed stale work file",
			logging.String("path", filePath),
			logging.Int64("size_bytes", info.Size()),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}

	return result
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
