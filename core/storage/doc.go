// Package storage reads configuration documents from S3 compatible object storage.
//
// It wraps the MinIO Go client behind a small Client interface so sources can
// be mocked in tests (see core/storage/mocks). Locations take the form
// s3://bucket/key and are resolved by core/source.
//
//	client, err := storage.NewClient(cfg)
//	exists, err := client.BucketExists(ctx, "validator-config")
package storage
