// Package utils provides loose type conversion helpers for values decoded
// from YAML and JSON documents, where a field may arrive as a number, a
// string or nothing at all.
package utils
