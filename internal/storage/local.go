package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// LocalStorage Implementation
// =============================================================================

// LocalStorage implements the Storage interface using the local filesystem.
// Buckets map to subdirectories of the base path. Intended for development
// and tests, where pointing the analyzer at real object storage is overkill.
//
// Security: Path traversal prevention is enforced in resolvePath().
type LocalStorage struct {
	basePath      string // Root directory for objects
	defaultBucket string
	logger        *slog.Logger
}

// NewLocalStorage creates a new LocalStorage instance.
//
// The base directory is created if it doesn't exist.
// Returns an error if directory creation fails.
func NewLocalStorage(cfg LocalConfig, logger *slog.Logger) (*LocalStorage, error) {
	// Ensure base path is absolute
	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	// Create base directory if it doesn't exist
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	logger.Info("initialized local storage",
		"base_path", absPath,
		"default_bucket", cfg.DefaultBucket,
	)

	return &LocalStorage{
		basePath:      absPath,
		defaultBucket: cfg.DefaultBucket,
		logger:        logger,
	}, nil
}

// =============================================================================
// Interface Implementation
// =============================================================================

// Get retrieves the object at the specified key.
func (s *LocalStorage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	if ctx.Err() != nil {
		return nil, ObjectInfo{}, ctx.Err()
	}

	filePath, bucket, err := s.resolvePath(bucket, key)
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: err}
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: ErrNotFound}
		}
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: fmt.Errorf("failed to open file: %w", err)}
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: fmt.Errorf("failed to stat file: %w", err)}
	}

	return file, s.objectInfo(bucket, key, stat), nil
}

// Head retrieves object metadata without opening the file for reading.
func (s *LocalStorage) Head(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	if ctx.Err() != nil {
		return ObjectInfo{}, ctx.Err()
	}

	filePath, bucket, err := s.resolvePath(bucket, key)
	if err != nil {
		return ObjectInfo{}, &StorageError{Op: "Head", Key: key, Err: err}
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectInfo{}, &StorageError{Op: "Head", Key: key, Err: ErrNotFound}
		}
		return ObjectInfo{}, &StorageError{Op: "Head", Key: key, Err: fmt.Errorf("failed to stat file: %w", err)}
	}

	return s.objectInfo(bucket, key, stat), nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// objectInfo builds ObjectInfo from file metadata. Content type comes from
// the key's extension; local storage has no stored MIME metadata.
func (s *LocalStorage) objectInfo(bucket, key string, stat os.FileInfo) ObjectInfo {
	contentType := DetectContentType("", key, nil)
	return ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         stat.Size(),
		ContentType:  contentType,
		LastModified: stat.ModTime(),
	}
}

// resolvePath maps a bucket/key pair to an absolute file path under the base
// directory, rejecting traversal attempts.
func (s *LocalStorage) resolvePath(bucket, key string) (string, string, error) {
	if bucket == "" {
		bucket = s.defaultBucket
	}
	if err := validateKey(key); err != nil {
		return "", bucket, err
	}
	if strings.Contains(bucket, "..") {
		return "", bucket, ErrInvalidKey
	}

	full := filepath.Join(s.basePath, bucket, filepath.FromSlash(key))

	// The joined path must stay inside the base directory.
	if !strings.HasPrefix(full, s.basePath+string(os.PathSeparator)) {
		return "", bucket, ErrInvalidKey
	}

	return full, bucket, nil
}
