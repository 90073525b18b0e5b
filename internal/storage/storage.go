// Package storage provides the file workspace for split jobs and optional
// S3 delivery of exported segments. It defines the Storage port plus
// implementations for local disk and S3.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for the split-job file workspace.
// Implementations hold uploaded recordings and exported segment files, and
// optionally deliver segments to S3.
type Storage interface {
	// SaveUpload writes an uploaded recording to the workspace and returns
	// its path. The name parameter is used as a hint for the filename.
	SaveUpload(ctx context.Context, name string, data io.Reader) (path string, err error)

	// Open reads a workspace file. The caller must close the ReadCloser.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// SegmentDir returns (creating it if needed) the directory where a
	// job's segment files are written.
	SegmentDir(jobID string) (string, error)

	// Cleanup removes the given workspace files. It continues past
	// individual failures and returns the first error encountered.
	Cleanup(ctx context.Context, paths []string) error

	// Upload pushes a segment file to S3 under the given key and returns
	// the public URL. Returns ErrS3NotConfigured when S3 is not set up.
	Upload(ctx context.Context, key string, data io.Reader) (url string, err error)
}
