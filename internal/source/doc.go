// Package source loads tables from external files.
//
// Supported layouts:
//
//   - fixed: fixed-width data described by a Stata dictionary (.dct)
//   - csv: comma-separated data with a header row
//
// Data may be gzip-compressed; compression is detected from the stream's
// magic bytes, not the file name. Files are addressed by local path,
// file:// URI or s3://bucket/key.
//
// Parse failures are returned to the caller with the file and line; this
// package never repairs input.
package source
