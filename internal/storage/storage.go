// Package storage provides read-only object retrieval for the aspect
// analysis service.
//
// This package defines a Storage interface with implementations for:
// - LocalStorage: File system storage for development
// - S3Storage: S3-compatible object storage (AWS S3, Cloudflare R2, MinIO)
//
// The analyzer only ever reads: it fetches object bytes for pixel probing and
// object metadata (size, content type) as evidence for dimension estimation.
// Retrieval failures are soft from the analyzer's point of view; they
// downgrade the request to filename and hint evidence.
package storage

import (
	"context"
	"io"
	"time"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the read-side interface for object retrieval.
//
// All methods are context-aware for timeout and cancellation support. The
// bucket argument may be empty, in which case the implementation's default
// bucket applies.
type Storage interface {
	// Get retrieves the object at the specified key.
	// Returns the data as an io.ReadCloser (caller must close), object
	// metadata, and an error. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)

	// Head retrieves metadata for the object at the specified key without
	// downloading the body. Returns ErrNotFound if the key doesn't exist.
	Head(ctx context.Context, bucket, key string) (ObjectInfo, error)
}

// =============================================================================
// Data Types
// =============================================================================

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Bucket       string    // Bucket the object was read from
	Key          string    // Object key/path
	Size         int64     // Size in bytes
	ContentType  string    // MIME type
	LastModified time.Time // Last modification time
	ETag         string    // Entity tag (if available)
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where objects live. Buckets map to
	// subdirectories of it.
	// Example: "./storage" or "/var/lib/aspectd/objects"
	BasePath string

	// DefaultBucket is used when a request carries no bucket name.
	DefaultBucket string
}

// S3Config holds configuration for S3-compatible object storage.
type S3Config struct {
	// AccessKeyID and SecretAccessKey are static credentials. If both are
	// empty the SDK's default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// DefaultBucket is used when a request carries no bucket name.
	DefaultBucket string

	// Region is the AWS region. Defaults to "auto" for R2-style endpoints.
	Region string

	// Endpoint overrides the S3 endpoint URL for R2 or MinIO deployments.
	// Leave empty for AWS S3 proper.
	Endpoint string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderS3 identifies the S3-compatible storage provider.
	ProviderS3 = "s3"
)
