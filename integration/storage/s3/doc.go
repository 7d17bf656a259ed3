// Package s3 implements a replication provider backed by Amazon S3 or any
// S3-compatible service (MinIO, Wasabi, DigitalOcean Spaces).
//
// A provider is probed once at startup: the bucket is checked and created
// when absent; an unrecoverable credential or connectivity failure marks
// the provider disabled for the process lifetime without failing startup.
// Uploads return presigned GET URLs with a fixed expiry.
package s3
