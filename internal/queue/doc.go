// Package queue receives export tasks from SQS and decodes their payloads.
//
// The worker receives at most one message per poll, processes it, and
// deletes it only after success. Messages that are not valid JSON or do not
// match the task schema are reported as ErrMalformedTask or
// *TaskValidationError; the caller leaves them on the queue so the redrive
// policy can move them aside.
package queue
