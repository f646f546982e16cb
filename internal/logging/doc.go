// Package logging assembles structured slog loggers and formatting helpers
// used by the exporter worker, its CLI, and the grants ingest functions.
//
// It owns the console and JSON handlers, picks between them based on whether
// stderr is a terminal, and exposes context-aware helpers so processing code
// can automatically tag log lines with task and correlation identifiers. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
