// Package storage defines the object storage contract used to stage audio
// for file-mode recognition, plus a lifecycle component around it.
//
// Backends:
//   - storage/s3: S3-compatible object stores (Tencent COS in production),
//     with presigned GET URLs
//   - storage/blob: a temporary public blob service addressed by URL
//   - storage/testutil: in-memory backend for tests
//
// Backends register a factory with RegisterFactory from an init function;
// import the package (or a type from it) to make it available to New.
package storage
