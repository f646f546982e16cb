// Package testsupport offers helpers shared by package tests: temporary
// configurations, fixture files and zip archives, and an in-memory S3 server.
package testsupport
