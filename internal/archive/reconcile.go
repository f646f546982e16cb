package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gostjobs/internal/logging"
	"gostjobs/internal/manifest"
	"gostjobs/internal/services"
)

// Status classifies what happened to a single manifest entry.
type Status int

const (
	StatusSkipped Status = iota
	StatusAdded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusAdded:
		return "added"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// EntryOutcome records the handling of one manifest entry.
type EntryOutcome struct {
	Entry  manifest.Entry
	Name   string
	Source string
	Status Status
	Err    error
}

// Result summarizes a reconciliation pass.
type Result struct {
	Checked  int
	Added    int
	Outcomes []EntryOutcome
}

// Modified reports whether any entry was added.
func (r Result) Modified() bool {
	return r.Added > 0
}

// EntrySource yields manifest entries until io.EOF.
type EntrySource interface {
	Next() (manifest.Entry, error)
}

// ReconcileOptions locate source files for manifest entries.
type ReconcileOptions struct {
	// SourceDir contains files named <identifier><extension>.
	SourceDir string
	// SourceExtension overrides the extension taken from each destination path.
	SourceExtension string
	Logger          *slog.Logger
}

// Reconcile adds every entry from src whose normalized name is absent from a.
// It stops at the first failure and returns the partial result; entries added
// before the failure stay in the archive. The caller owns a and must Close it.
func Reconcile(ctx context.Context, a *Archive, src EntrySource, opts ReconcileOptions) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	var result Result
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		entry, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, services.Wrap(services.ErrValidation, "archive", "reconcile", "read manifest", err)
		}
		result.Checked++

		outcome, err := reconcileEntry(a, entry, opts, logger)
		result.Outcomes = append(result.Outcomes, outcome)
		if err != nil {
			return result, err
		}
		if outcome.Status == StatusAdded {
			result.Added++
			logger.Info("added file to the archive",
				logging.String("source_path", outcome.Source),
				logging.String("entry_path", outcome.Name),
				logging.Int("files_added", result.Added),
				logging.Int("files_checked", result.Checked),
			)
		}
	}

	summary := logger.With(logging.Int("files_added", result.Added), logging.Int("files_checked", result.Checked))
	switch {
	case result.Checked == 0:
		summary.Info("zip archive not updated because manifest provided no source files")
	case result.Added == 0:
		summary.Info("zip archive not updated because entries already exist for all files named in manifest")
	default:
		summary.Info("updated zip archive")
	}
	return result, nil
}

func reconcileEntry(a *Archive, entry manifest.Entry, opts ReconcileOptions, logger *slog.Logger) (EntryOutcome, error) {
	outcome := EntryOutcome{Entry: entry, Status: StatusFailed}

	name, err := NormalizeName(entry.DestinationPath)
	if err != nil {
		outcome.Err = err
		return outcome, services.Wrap(services.ErrValidation, "archive", "normalize", fmt.Sprintf("line %d: %q", entry.Line, entry.DestinationPath), err)
	}
	outcome.Name = name

	if !validIdentifier(entry.Identifier) {
		outcome.Err = fmt.Errorf("identifier %q is not a plain file name", entry.Identifier)
		return outcome, services.Wrap(services.ErrValidation, "archive", "locate source", fmt.Sprintf("line %d", entry.Line), outcome.Err)
	}
	ext := opts.SourceExtension
	if ext == "" {
		ext = path.Ext(name)
	}
	outcome.Source = filepath.Join(opts.SourceDir, entry.Identifier+ext)

	entryLogger := logger.With(logging.String("source_path", outcome.Source), logging.String("entry_path", name))
	if name != entry.DestinationPath {
		logging.WarnWithContext(entryLogger, "normalized an entry path that was not zip compatible", "entry_path_normalized",
			logging.String("incompatible_entry_path", entry.DestinationPath),
			logging.String(logging.FieldErrorHint, "fix path generation in the export request"),
		)
	}

	if a.Has(name) {
		outcome.Status = StatusSkipped
		entryLogger.Info("file already exists in archive")
		return outcome, nil
	}

	f, err := os.Open(outcome.Source)
	if err != nil {
		outcome.Err = err
		logging.ErrorWithContext(entryLogger, "source file unavailable", "archive_source_missing",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "confirm the upload exists in the data directory"),
		)
		return outcome, services.Wrap(services.ErrMissingSource, "archive", "open source", outcome.Source, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		outcome.Err = err
		return outcome, services.Wrap(services.ErrMissingSource, "archive", "stat source", outcome.Source, err)
	}
	if info.IsDir() {
		outcome.Err = errors.New("source is a directory")
		return outcome, services.Wrap(services.ErrMissingSource, "archive", "open source", outcome.Source, outcome.Err)
	}

	if err := a.Add(name, f, info.ModTime()); err != nil {
		outcome.Err = err
		logging.ErrorWithContext(entryLogger, "error writing source file to entry in archive", "archive_write_failed", logging.Error(err))
		return outcome, services.Wrap(services.ErrArchiveWrite, "archive", "add entry", name, err)
	}
	outcome.Status = StatusAdded
	return outcome, nil
}

func validIdentifier(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.ContainsRune(id, 0)
}
