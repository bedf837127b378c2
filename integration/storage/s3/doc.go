// Package s3 is an optional core/storage.Backend implementation for the
// file destination, backed by Amazon S3 or an S3-compatible service
// (MinIO, DigitalOcean Spaces, Wasabi, ...).
//
// Basic usage:
//
//	import (
//		"context"
//
//		"github.com/conduithq/conduit/integration/storage/s3"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		backend, err := s3.New(ctx, s3.Config{
//			Bucket: "conduit-messages",
//			Region: "us-east-1",
//			// AccessKeyID/SecretKey optional - falls back to IAM roles/env vars
//		})
//		if err != nil {
//			panic(err)
//		}
//
//		if err := backend.Write(ctx, "channel-1/message_123.txt", []byte("MSH|..."), false); err != nil {
//			panic(err)
//		}
//	}
//
// # S3-compatible services
//
//	cfg := s3.Config{
//		Bucket:         "my-bucket",
//		Region:         "us-east-1", // still required by the SDK
//		AccessKeyID:    "minioadmin",
//		SecretKey:      "minioadmin",
//		Endpoint:       "http://localhost:9000",
//		ForcePathStyle: true, // required for MinIO
//	}
//
// S3 has no native append operation. When Write is called with
// appendMode=true, the backend performs a best-effort read-modify-write:
// fetch the existing object (treating "not found" as empty), concatenate
// the new bytes, and rewrite the object in full. This is not atomic under
// concurrent writers to the same key.
package s3
