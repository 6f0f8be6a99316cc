// Package source reads configuration documents from local files, object
// storage (s3://bucket/key) or HTTP(S) endpoints such as raw GitHub URLs.
package source
