// Package services defines shared utilities consumed by the exporter worker,
// the grants ingest handlers, and their AWS integrations.
//
// Key responsibilities:
//   - Context helpers that stamp task identifiers and correlation identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     as retryable (transport, archive writes) or permanent (validation,
//     configuration).
//
// Use these helpers when wiring new processing steps so error handling and
// observability stay uniform across the worker and the ingest functions.
package services
