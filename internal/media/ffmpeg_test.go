package media

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/voxport/vadsplit-api/internal/audio"
)

// checkFFmpeg skips test if ffmpeg is not available.
func checkFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH, skipping test")
	}
}

// createTestWAV writes a stereo 44.1kHz sine-wave WAV using ffmpeg.
func createTestWAV(t *testing.T, path string, durationSec float64) {
	t.Helper()
	cmd := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=2",
		"-ar", "44100", "-ac", "2",
		path,
	)
	out, _ := cmd.CombinedOutput()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("failed to create test WAV: %s", string(out))
	}
}

func TestNewFFmpegNormalizer_DefaultPath(t *testing.T) {
	n := NewFFmpegNormalizer("")
	if n.ffmpegPath != "ffmpeg" {
		t.Errorf("expected default path 'ffmpeg', got '%s'", n.ffmpegPath)
	}
}

func TestNormalize_InvalidSampleRate(t *testing.T) {
	n := NewFFmpegNormalizer("")
	err := n.Normalize(context.Background(), "in.wav", "out.wav", 0)
	if !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("error = %v, want ErrInvalidSampleRate", err)
	}
}

func TestNormalize(t *testing.T) {
	checkFFmpeg(t)

	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "stereo44k.wav")
	dst := filepath.Join(tmpDir, "mono16k.wav")
	createTestWAV(t, src, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n := NewFFmpegNormalizer("")
	if err := n.Normalize(ctx, src, dst, 16000); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	clip, err := audio.Load(dst)
	if err != nil {
		t.Fatalf("load normalized output: %v", err)
	}
	if clip.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", clip.SampleRate())
	}
	if clip.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", clip.Channels())
	}
}

func TestNormalize_MissingInput(t *testing.T) {
	checkFFmpeg(t)

	tmpDir := t.TempDir()
	n := NewFFmpegNormalizer("")
	err := n.Normalize(context.Background(), filepath.Join(tmpDir, "none.wav"),
		filepath.Join(tmpDir, "out.wav"), 16000)
	if err == nil {
		t.Fatal("expected error for missing input")
	}

	var ffErr *FFmpegError
	if !errors.As(err, &ffErr) {
		t.Errorf("error = %T, want *FFmpegError", err)
	}
}

func TestProbeDuration(t *testing.T) {
	checkFFmpeg(t)
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH, skipping test")
	}

	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "in.wav")
	createTestWAV(t, src, 2)

	n := NewFFmpegNormalizer("")
	dur, err := n.ProbeDuration(context.Background(), src)
	if err != nil {
		t.Fatalf("ProbeDuration() error = %v", err)
	}
	if dur < 1.9 || dur > 2.1 {
		t.Errorf("ProbeDuration() = %f, want ~2.0", dur)
	}
}
