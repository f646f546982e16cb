// Package daemon wraps the worker loop with single-instance locking and
// startup preflight checks.
//
// A Daemon holds a gofrs/flock lock under the work directory for as long as
// it runs, so two workers started against the same work directory cannot
// stage archives over each other.
package daemon
