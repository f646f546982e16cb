// Package storage wraps the S3 client with the operations the exporter and
// the ingest functions share: downloading an object to a local file with
// not-found detection, streaming reads, and encrypted managed uploads.
package storage
