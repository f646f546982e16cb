// Package manifest streams the CSV manifests that describe which uploaded
// spreadsheets belong in an organization's export archive.
//
// A manifest maps upload identifiers to destination paths inside the archive.
// Two header layouts are understood: the current v2 layout keyed by
// path_in_zip and the legacy v1 layout keyed by directory_location. Rows are
// validated as they are read, so a malformed row surfaces as a *RowError only
// after every earlier row has been handed to the caller.
package manifest
