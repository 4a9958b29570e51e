package storage

import (
	"context"
)

// ServiceConfig holds the settings required to reach the avatar bucket.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// PublicBaseURL is the prefix public object URLs are built from,
	// e.g. "https://cdn.example.com/avatars".
	PublicBaseURL string
}

// ObjectStorage is the public interface of the avatar object store.
type ObjectStorage interface {
	// Put uploads body under key. The write is refused when an object
	// already exists at that key; uploads never overwrite.
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// PublicURL resolves the durable public URL for a stored key.
	PublicURL(key string) string

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}

// NewObjectStorage is the factory for ObjectStorage. Only S3-compatible
// backends are supported.
func NewObjectStorage(cfg ServiceConfig) (ObjectStorage, error) {
	return newS3Client(cfg)
}
