// Package grantsingest implements the two functions that stage the daily
// Grants.gov database dump in S3.
//
// Downloader streams the published zip for a scheduled date into the source
// data bucket. Extractor reacts to the resulting S3 notification and writes
// the XML member of that archive next to it as extract.xml. Both are plain
// types with context-aware Handle methods; cmd/ wraps them in the Lambda
// runtime.
package grantsingest
