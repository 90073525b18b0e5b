package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLocalStorage(t *testing.T) {
	t.Run("creates directory if not exists", func(t *testing.T) {
		workDir := filepath.Join(os.TempDir(), "vadsplit_test_"+randomSuffix())
		defer func() { _ = os.RemoveAll(workDir) }()

		store, err := NewLocalStorage(workDir)
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		if store.WorkDir() != workDir {
			t.Errorf("WorkDir() = %v, want %v", store.WorkDir(), workDir)
		}

		info, err := os.Stat(workDir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("uses default directory when empty", func(t *testing.T) {
		store, err := NewLocalStorage("")
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		expected := filepath.Join(os.TempDir(), "vadsplit")
		if store.WorkDir() != expected {
			t.Errorf("WorkDir() = %v, want %v", store.WorkDir(), expected)
		}
	})
}

func TestLocalStorage_SaveUpload(t *testing.T) {
	store := setupTestStorage(t)

	t.Run("saves data to workspace file", func(t *testing.T) {
		ctx := context.Background()
		data := bytes.NewReader([]byte("riff data"))

		path, err := store.SaveUpload(ctx, "recording", data)
		if err != nil {
			t.Fatalf("SaveUpload() error = %v", err)
		}
		defer func() { _ = os.Remove(path) }()

		if !strings.Contains(path, "recording_") {
			t.Errorf("path %s should contain 'recording_'", path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "riff data" {
			t.Errorf("got %q, want %q", string(content), "riff data")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := store.SaveUpload(ctx, "recording", bytes.NewReader([]byte("data")))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLocalStorage_Open(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	t.Run("opens saved file", func(t *testing.T) {
		path, err := store.SaveUpload(ctx, "open_test", bytes.NewReader([]byte("open data")))
		if err != nil {
			t.Fatalf("SaveUpload() error = %v", err)
		}
		defer func() { _ = os.Remove(path) }()

		reader, err := store.Open(ctx, path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = reader.Close() }()

		content, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(content) != "open data" {
			t.Errorf("got %q, want %q", string(content), "open data")
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := store.Open(ctx, "/non/existent/file")
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}

func TestLocalStorage_SegmentDir(t *testing.T) {
	store := setupTestStorage(t)

	dir, err := store.SegmentDir("split-123-abcd")
	if err != nil {
		t.Fatalf("SegmentDir() error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("segment dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory, got file")
	}

	// Idempotent: second call must not fail.
	again, err := store.SegmentDir("split-123-abcd")
	if err != nil {
		t.Fatalf("SegmentDir() second call error = %v", err)
	}
	if again != dir {
		t.Errorf("SegmentDir() = %v, want %v", again, dir)
	}
}

func TestLocalStorage_Cleanup(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	t.Run("removes files", func(t *testing.T) {
		var paths []string
		for i := 0; i < 3; i++ {
			path, err := store.SaveUpload(ctx, "cleanup", bytes.NewReader([]byte("data")))
			if err != nil {
				t.Fatalf("SaveUpload() error = %v", err)
			}
			paths = append(paths, path)
		}

		if err := store.Cleanup(ctx, paths); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}

		for _, p := range paths {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("file %s still exists", p)
			}
		}
	})

	t.Run("ignores non-existent files", func(t *testing.T) {
		if err := store.Cleanup(ctx, []string{"/non/existent/file"}); err != nil {
			t.Errorf("Cleanup() should ignore non-existent files, got %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := store.Cleanup(ctx, []string{"/some/path"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLocalStorage_Upload(t *testing.T) {
	store := setupTestStorage(t)

	_, err := store.Upload(context.Background(), "key", bytes.NewReader([]byte("data")))
	if !errors.Is(err, ErrS3NotConfigured) {
		t.Errorf("expected ErrS3NotConfigured, got %v", err)
	}
}

func setupTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	workDir := filepath.Join(os.TempDir(), "vadsplit_test_"+randomSuffix())
	t.Cleanup(func() { _ = os.RemoveAll(workDir) })

	store, err := NewLocalStorage(workDir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return store
}

func randomSuffix() string {
	return time.Now().Format("20060102150405.000000000")
}
