// Package workflow runs the export worker loop.
//
// The Manager receives one queue message at a time, decodes it into a task,
// and drives the task through download, manifest streaming, archive
// reconciliation, upload, and notification before deleting the message.
// Tasks are processed strictly in sequence; shutdown is observed only between
// tasks so that an in-flight archive is never left half uploaded.
package workflow
