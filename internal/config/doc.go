// Package config loads, normalizes, and validates arpa-exporter configuration.
//
// It supplies repository defaults, reads TOML files, expands user paths
// (including tilde shortcuts), and honours the environment variables the
// container deployment sets, such as TASK_QUEUE_URL and DATA_DIR. The Config
// type centralizes every knob the worker and CLI need so queue, storage, and
// email settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
