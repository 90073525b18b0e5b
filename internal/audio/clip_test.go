package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV creates a mono 16-bit WAV file with the given sample rate and
// a deterministic ramp pattern so slices can be verified by value.
func writeTestWAV(t *testing.T, path string, sampleRate, frames int) {
	t.Helper()

	data := make([]int, frames)
	for i := range data {
		data[i] = (i % 2000) - 1000
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test WAV: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close test WAV: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "in.wav")
	writeTestWAV(t, path, 16000, 16000) // exactly 1 second

	clip, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if clip.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", clip.SampleRate())
	}
	if clip.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", clip.Channels())
	}
	if clip.Frames() != 16000 {
		t.Errorf("Frames() = %d, want 16000", clip.Frames())
	}
	if clip.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", clip.Duration())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/input.wav")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_NotAWAVFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "garbage.wav")
	if err := os.WriteFile(path, []byte("this is not audio"), 0o644); err != nil {
		t.Fatalf("write garbage file: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("Load() error = %v, want ErrInvalidWAV", err)
	}
}

func TestSliceMS(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "in.wav")
	writeTestWAV(t, path, 16000, 32000) // 2 seconds

	clip, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	t.Run("half-open slice", func(t *testing.T) {
		s := clip.SliceMS(500, 1500)
		if s.Frames() != 16000 {
			t.Errorf("Frames() = %d, want 16000", s.Frames())
		}
	})

	t.Run("truncated offsets land on exact frames", func(t *testing.T) {
		// 1234ms at 16kHz is frame 19744.
		s := clip.SliceMS(1234, 2000)
		if s.Frames() != 32000-19744 {
			t.Errorf("Frames() = %d, want %d", s.Frames(), 32000-19744)
		}
	})

	t.Run("end clamped to clip length", func(t *testing.T) {
		s := clip.SliceMS(1000, 10000)
		if s.Frames() != 16000 {
			t.Errorf("Frames() = %d, want 16000", s.Frames())
		}
	})

	t.Run("start equals end yields empty clip", func(t *testing.T) {
		s := clip.SliceMS(0, 0)
		if s.Frames() != 0 {
			t.Errorf("Frames() = %d, want 0", s.Frames())
		}
	})

	t.Run("start after end yields empty clip", func(t *testing.T) {
		s := clip.SliceMS(1500, 500)
		if s.Frames() != 0 {
			t.Errorf("Frames() = %d, want 0", s.Frames())
		}
	})
}

func TestSave_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "in.wav")
	outPath := filepath.Join(tmpDir, "out.wav")
	writeTestWAV(t, inPath, 16000, 16000)

	clip, err := Load(inPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	slice := clip.SliceMS(250, 750)
	if err := slice.Save(outPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := Load(outPath)
	if err != nil {
		t.Fatalf("Load(roundtrip) error = %v", err)
	}
	if reloaded.Frames() != 8000 {
		t.Errorf("Frames() = %d, want 8000", reloaded.Frames())
	}
	if reloaded.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", reloaded.SampleRate())
	}
}

func TestSave_EmptyClip(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "in.wav")
	outPath := filepath.Join(tmpDir, "empty.wav")
	writeTestWAV(t, inPath, 16000, 16000)

	clip, err := Load(inPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := clip.SliceMS(0, 0).Save(outPath); err != nil {
		t.Fatalf("Save(empty) error = %v", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected WAV headers even for an empty clip")
	}
}

func TestSave_Overwrite(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "in.wav")
	outPath := filepath.Join(tmpDir, "out.wav")
	writeTestWAV(t, inPath, 16000, 16000)

	clip, err := Load(inPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := clip.SliceMS(0, 500).Save(outPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	first, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read first write: %v", err)
	}

	if err := clip.SliceMS(0, 500).Save(outPath); err != nil {
		t.Fatalf("Save(overwrite) error = %v", err)
	}
	second, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read second write: %v", err)
	}

	if len(first) != len(second) {
		t.Errorf("overwrite changed file size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("overwrite produced different content at byte %d", i)
		}
	}
}

func TestMonoFloat32(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "in.wav")
	writeTestWAV(t, path, 16000, 1600)

	clip, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	samples, err := clip.MonoFloat32()
	if err != nil {
		t.Fatalf("MonoFloat32() error = %v", err)
	}
	if len(samples) != 1600 {
		t.Fatalf("len(samples) = %d, want 1600", len(samples))
	}
	for i, s := range samples {
		if s < -1 || s > 1 {
			t.Fatalf("sample %d = %f, outside [-1, 1]", i, s)
		}
	}
}

func TestMonoFloat32_EmptyClip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "in.wav")
	writeTestWAV(t, path, 16000, 1600)

	clip, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = clip.SliceMS(0, 0).MonoFloat32()
	if !errors.Is(err, ErrEmptyClip) {
		t.Errorf("MonoFloat32() error = %v, want ErrEmptyClip", err)
	}
}
