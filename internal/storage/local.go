package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrS3NotConfigured is returned when S3 operations are attempted
// without proper configuration.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// LocalStorage implements the Storage interface using local disk only.
// Uploaded recordings and exported segments live under a single workspace
// directory; S3 delivery is unavailable unless wrapped by S3Storage.
type LocalStorage struct {
	workDir string
}

// NewLocalStorage creates a new LocalStorage instance.
// If workDir is empty, a "vadsplit" directory under os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewLocalStorage(workDir string) (*LocalStorage, error) {
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "vadsplit")
	}

	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}

	return &LocalStorage{workDir: workDir}, nil
}

// WorkDir returns the workspace directory path.
func (s *LocalStorage) WorkDir() string {
	return s.workDir
}

// SaveUpload writes data to a uniquely named file in the workspace.
// The name is used as a base for the filename with a unique suffix.
func (s *LocalStorage) SaveUpload(ctx context.Context, name string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	f, err := os.CreateTemp(s.workDir, name+"_*.wav")
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	fileName := f.Name()
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(fileName)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(fileName)
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return fileName, nil
}

// Open reads a workspace file and returns a reader.
// The caller is responsible for closing the returned ReadCloser.
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	f, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return nil, fmt.Errorf("open workspace file: %w", err)
	}

	return f, nil
}

// SegmentDir creates and returns the per-job segment output directory.
// Creation is idempotent.
func (s *LocalStorage) SegmentDir(jobID string) (string, error) {
	dir := filepath.Join(s.workDir, jobID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create segment directory: %w", err)
	}
	return dir, nil
}

// Cleanup removes the specified workspace files.
// It continues cleanup even if some files fail to delete,
// returning the first error encountered.
func (s *LocalStorage) Cleanup(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove workspace file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

// Upload is not supported by LocalStorage and returns ErrS3NotConfigured.
func (s *LocalStorage) Upload(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "", ErrS3NotConfigured
}
