package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// =============================================================================
// S3Storage Implementation
// =============================================================================

// S3Storage implements the Storage interface over any S3-compatible service.
// AWS S3, Cloudflare R2, and MinIO all work; R2 and MinIO need the Endpoint
// override in S3Config.
type S3Storage struct {
	client        *s3.Client
	defaultBucket string
	logger        *slog.Logger
}

// NewS3Storage creates a new S3Storage instance.
func NewS3Storage(cfg S3Config, logger *slog.Logger) (*S3Storage, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg := aws.Config{
		Region: region,
	}

	// Static credentials if provided; otherwise the SDK's default chain.
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token not needed
		)
	}

	// Custom endpoint for R2/MinIO deployments.
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:           endpoint,
					SigningRegion: region,
				}, nil
			},
		)
	}

	client := s3.NewFromConfig(awsCfg)

	logger.Info("initialized s3 storage",
		"default_bucket", cfg.DefaultBucket,
		"region", region,
		"endpoint", cfg.Endpoint,
	)

	return &S3Storage{
		client:        client,
		defaultBucket: cfg.DefaultBucket,
		logger:        logger,
	}, nil
}

// =============================================================================
// Interface Implementation
// =============================================================================

// Get retrieves the object at the specified key.
func (s *S3Storage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	bucket = s.resolveBucket(bucket)
	if err := validateKey(key); err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: err}
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: wrapS3Error(err)}
	}

	info := ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         aws.ToInt64(result.ContentLength),
		ContentType:  aws.ToString(result.ContentType),
		LastModified: aws.ToTime(result.LastModified),
		ETag:         aws.ToString(result.ETag),
	}

	return result.Body, info, nil
}

// Head retrieves object metadata without downloading the body.
func (s *S3Storage) Head(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	bucket = s.resolveBucket(bucket)
	if err := validateKey(key); err != nil {
		return ObjectInfo{}, &StorageError{Op: "Head", Key: key, Err: err}
	}

	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ObjectInfo{}, &StorageError{Op: "Head", Key: key, Err: wrapS3Error(err)}
	}

	info := ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         aws.ToInt64(result.ContentLength),
		ContentType:  aws.ToString(result.ContentType),
		LastModified: aws.ToTime(result.LastModified),
		ETag:         aws.ToString(result.ETag),
	}

	s.logger.Debug("headed object",
		"bucket", bucket,
		"key", key,
		"size", info.Size,
		"content_type", info.ContentType,
	)

	return info, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// resolveBucket falls back to the configured default bucket.
func (s *S3Storage) resolveBucket(bucket string) string {
	if bucket == "" {
		return s.defaultBucket
	}
	return bucket
}

// validateKey checks if a storage key is valid.
// Rejects empty keys and keys with path traversal attempts.
func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	// Reject keys with path traversal
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}

	return nil
}

// wrapS3Error converts S3 SDK errors to storage errors.
func wrapS3Error(err error) error {
	if err == nil {
		return nil
	}

	// Check for NotFound errors
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	// Check for NoSuchKey
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return ErrNotFound
	}

	// Check for access denied
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return ErrNotFound
		case "AccessDenied", "Forbidden":
			return ErrAccessDenied
		}

		// Check HTTP status code
		if httpErr, ok := err.(interface{ HTTPStatusCode() int }); ok {
			switch httpErr.HTTPStatusCode() {
			case http.StatusNotFound:
				return ErrNotFound
			case http.StatusForbidden:
				return ErrAccessDenied
			}
		}
	}

	// Return the original error wrapped
	return fmt.Errorf("s3 operation failed: %w", err)
}
