// Package archive maintains per-organization export zip files.
//
// An Archive is opened from a local file (which may be absent or empty),
// accepts new entries, and commits them on Close by writing a sibling file
// and renaming it over the original. Existing entries are copied without
// recompression, so their bytes and checksums never change across updates.
// Reconcile walks a manifest and adds only the entries whose names are not
// already present.
package archive
