// Package provider abstracts the object storage a run log is mirrored
// to.
//
// The surface is deliberately small: the log mirror reads, writes, and
// deletes whole objects and checks for their existence. Providers use
// SDK default credential chains and should not implement custom auth
// logic.
package provider

import (
	"context"
	"io"
	"time"
)

// Provider is a destination for mirrored log content.
//
// Implementations must be safe for concurrent use. Head and GetObject
// return ErrNotFound (wrapped in a ProviderError) when the object does
// not exist.
type Provider interface {
	// Head returns metadata for a single object.
	Head(ctx context.Context, key string) (*ObjectMeta, error)

	// GetObject downloads an object as a stream. The caller closes
	// the body.
	GetObject(ctx context.Context, key string) (body io.ReadCloser, contentLength int64, err error)

	// PutObject creates or overwrites an object.
	PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error

	// DeleteObject deletes an object. Deleting a missing object is
	// not an error.
	DeleteObject(ctx context.Context, key string) error

	// Close releases any resources held by the provider.
	Close() error
}

// ObjectMeta is the metadata Head reports for an object.
type ObjectMeta struct {
	// Key is the full object key (path) in the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag, when the backend supplies one.
	ETag string

	// LastModified is when the object was last modified.
	LastModified time.Time
}

// ProviderType identifies a storage backend.
type ProviderType string

const (
	// ProviderS3 represents AWS S3 or S3-compatible storage.
	ProviderS3 ProviderType = "s3"

	// ProviderFile represents a local filesystem backend.
	ProviderFile ProviderType = "file"
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	return string(p)
}
